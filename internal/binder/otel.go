package binder

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/wright-research/jlawson-maps/internal/binder"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

var (
	pinsAdded, _ = meter().Int64Counter("jlmaps.pins.added",
		metric.WithDescription("Pins created from map clicks"))
	styleSwapDuration, _ = meter().Float64Histogram("jlmaps.basemap.swap.duration",
		metric.WithDescription("End-to-end basemap swap duration"),
		metric.WithUnit("s"))
)
