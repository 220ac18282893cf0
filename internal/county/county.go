// Package county loads static per-county boundary polygons and merges them
// into one feature collection for the overlay layer.
package county

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb/geojson"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// Loader fetches county boundary documents and merges them. A county that
// fails to fetch or parse is logged and skipped; the merged result still
// carries every county that did load.
type Loader struct {
	fetcher Fetcher
	cache   Cache
	log     *slog.Logger
}

// NewLoader creates a loader. cache may be nil to disable caching.
func NewLoader(fetcher Fetcher, cache Cache, log *slog.Logger) *Loader {
	if cache == nil {
		cache = nopCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{fetcher: fetcher, cache: cache, log: log}
}

// Load fetches one boundary document per county name and flattens them all
// into a single feature collection. Every returned feature carries a
// "county" property naming its source county.
func (l *Loader) Load(ctx context.Context, names []string) (*geojson.FeatureCollection, error) {
	merged := geojson.NewFeatureCollection()

	for _, name := range core.NormalizeCounties(names) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, ok := l.cache.Get(ctx, name)
		if !ok {
			var err error
			data, err = l.fetcher.Fetch(ctx, name)
			if err != nil {
				l.log.Warn("skipping county, fetch failed", "county", name, "error", err)
				continue
			}
			l.cache.Set(ctx, name, data)
		}

		features, err := parseBoundary(data)
		if err != nil {
			l.log.Warn("skipping county, parse failed", "county", name, "error", err)
			continue
		}
		for _, f := range features {
			if f.Properties == nil {
				f.Properties = geojson.Properties{}
			}
			f.Properties["county"] = name
			merged.Append(f)
		}
	}

	return merged, nil
}

// parseBoundary accepts a FeatureCollection, a single Feature, or a bare
// Geometry document and normalizes all three into a flat feature list.
func parseBoundary(data []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid boundary document: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{f}, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
}
