package mapstate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wright-research/jlawson-maps/internal/binder"
	"github.com/wright-research/jlawson-maps/internal/county"
	"github.com/wright-research/jlawson-maps/internal/registry"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

type fetcherFunc func(ctx context.Context, name string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

var polyDoc = []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

func newEditor(t *testing.T) (*Serializer, *binder.MemorySurface, *registry.Registry, *binder.Binder) {
	t.Helper()
	surface := binder.NewMemorySurface()
	reg := registry.New()
	loader := county.NewLoader(fetcherFunc(func(_ context.Context, name string) ([]byte, error) {
		if name == "Hall" || name == "Fulton" {
			return polyDoc, nil
		}
		return nil, errors.New("not found")
	}), nil, nil)
	bind := binder.New(surface, reg, loader, binder.DefaultConfig(), nil)
	return New(surface, reg, bind), surface, reg, bind
}

func TestCaptureApply_RoundTrip(t *testing.T) {
	ser, surface, reg, bind := newEditor(t)
	ctx := context.Background()

	surface.JumpTo(core.Camera{Center: core.LonLat{Lon: -84.39, Lat: 33.75}, Zoom: 11, Bearing: 45, Pitch: 20})
	if err := bind.SwitchBasemap(ctx, core.BasemapSatellite); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg.AddPin(core.CategorySales, core.LonLat{Lon: -84.0, Lat: 33.0})
	reg.AddPin(core.CategoryRent, core.LonLat{Lon: -84.1, Lat: 33.1})
	reg.SetActiveCategory(core.CategoryRent)
	if err := bind.SetCountyOverlay(ctx, core.CountyOverlay{Enabled: true, SelectedCounties: []string{"Hall"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	captured := ser.Capture()

	// Apply the captured state to a fresh editor and capture again.
	ser2, surface2, _, _ := newEditor(t)
	if err := ser2.Apply(ctx, captured); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	again := ser2.Capture()
	if !reflect.DeepEqual(captured, again) {
		t.Errorf("state did not survive apply/capture:\nwant %+v\ngot  %+v", captured, again)
	}

	if surface2.Camera() != surface.Camera() {
		t.Errorf("camera mismatch: %+v != %+v", surface2.Camera(), surface.Camera())
	}
	if surface2.Style() != core.BasemapSatellite {
		t.Errorf("expected satellite style, got %s", surface2.Style())
	}
	if surface2.MarkerCount() != 2 {
		t.Errorf("expected 2 markers rebuilt, got %d", surface2.MarkerCount())
	}
	if _, ok := surface2.Overlay(binder.OverlayLayerID); !ok {
		t.Error("county overlay not restored")
	}
}

func TestApply_InactiveOverlayNotRendered(t *testing.T) {
	ser, surface, _, _ := newEditor(t)

	state := core.NewMapState()
	state.CountyOverlay = core.CountyOverlay{Enabled: true, SelectedCounties: []string{}}
	if err := ser.Apply(context.Background(), state); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, ok := surface.Overlay(binder.OverlayLayerID); ok {
		t.Error("overlay with empty selection must not render")
	}
}

func TestApply_AdvancesPinIDs(t *testing.T) {
	ser, _, reg, _ := newEditor(t)

	state := core.NewMapState()
	state.PinsByCategory[core.CategorySales] = []core.Pin{
		{ID: "pin-8", Position: core.LonLat{Lon: -84.0, Lat: 33.0}, DisplayNumber: 1, Category: core.CategorySales},
	}
	if err := ser.Apply(context.Background(), state); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	p, err := reg.AddPin(core.CategorySales, core.LonLat{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "pin-9" {
		t.Errorf("expected pin-9 after restoring pin-8, got %s", p.ID)
	}
}

func TestApply_LegacyDocumentEndToEnd(t *testing.T) {
	ser, surface, reg, _ := newEditor(t)

	legacy := []byte(`{
		"center": [-84.5, 33.9], "zoom": 9, "bearing": 0, "pitch": 0,
		"basemap": "gray",
		"pins": [
			{"id": "pin-1", "position": [-84.0, 33.0], "displayNumber": 1},
			{"id": "pin-2", "position": [-84.1, 33.1], "displayNumber": 2}
		]
	}`)
	var state core.MapState
	if err := state.UnmarshalJSON(legacy); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if err := ser.Apply(context.Background(), state); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got := len(reg.Pins(core.CategorySales)); got != 2 {
		t.Errorf("expected 2 sales pins from legacy doc, got %d", got)
	}
	if surface.MarkerCount() != 2 {
		t.Errorf("expected 2 markers, got %d", surface.MarkerCount())
	}
	if surface.Style() != core.BasemapGray {
		t.Errorf("expected gray style, got %s", surface.Style())
	}
}
