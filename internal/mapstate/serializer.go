// Package mapstate converts between the live editor (surface, registry,
// binder) and the flat persistable MapState record.
package mapstate

import (
	"context"
	"fmt"

	"github.com/wright-research/jlawson-maps/internal/binder"
	"github.com/wright-research/jlawson-maps/internal/registry"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

// Serializer captures and applies complete map state. Capture is a pure
// read; Apply drives the binder's full restoration protocol.
type Serializer struct {
	surface binder.Surface
	reg     *registry.Registry
	bind    *binder.Binder
}

// New creates a serializer over one editor instance.
func New(surface binder.Surface, reg *registry.Registry, bind *binder.Binder) *Serializer {
	return &Serializer{surface: surface, reg: reg, bind: bind}
}

// Capture reads the current camera, pins and overlay state into a MapState.
// No side effects.
func (s *Serializer) Capture() core.MapState {
	return core.MapState{
		Camera:          s.surface.Camera(),
		Basemap:         s.bind.Basemap(),
		PinsByCategory:  s.reg.Serialize(),
		CurrentCategory: s.reg.ActiveCategory(),
		CountyOverlay:   s.bind.Overlay(),
	}
}

// Apply restores a MapState: camera immediately (no animation), basemap via
// the binder's event-gated swap protocol, then pins, markers and overlay.
// Pin restoration advances the registry's id counter so later pins never
// collide with restored ones.
func (s *Serializer) Apply(ctx context.Context, state core.MapState) error {
	s.reg.Restore(state.PinsByCategory)
	if err := s.reg.SetActiveCategory(state.CurrentCategory); err != nil {
		return err
	}

	s.surface.JumpTo(state.Camera)

	if err := s.bind.SwitchBasemap(ctx, state.Basemap); err != nil {
		return fmt.Errorf("restoring basemap: %w", err)
	}
	if err := s.bind.SetCountyOverlay(ctx, state.CountyOverlay); err != nil {
		return fmt.Errorf("restoring county overlay: %w", err)
	}
	if err := s.bind.RebuildMarkers(); err != nil {
		return fmt.Errorf("rebuilding markers: %w", err)
	}
	return nil
}
