// Package binder keeps on-screen markers and overlay layers consistent with
// the pin registry across drags, category switches and basemap swaps.
package binder

import (
	"github.com/paulmach/orb/geojson"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// Surface abstracts the map runtime the binder renders into. Style swaps are
// asynchronous: SetStyle returns a channel that is closed once the new style
// has finished loading, and Idle returns a channel closed once rendering has
// settled after that. Overlay sources and layers are style-scoped and are
// destroyed by a style swap; markers are not.
type Surface interface {
	// Camera returns the current viewport pose.
	Camera() core.Camera
	// JumpTo applies a camera pose instantaneously, without animation.
	JumpTo(core.Camera)
	// SetStyle requests a basemap swap. The returned channel is closed when
	// the new style has finished loading and is safe to query.
	SetStyle(core.Basemap) <-chan struct{}
	// Idle returns a channel closed when rendering has settled. Adding a
	// source before this point is unreliable.
	Idle() <-chan struct{}
	// AddMarker creates a draggable marker for a pin.
	AddMarker(pin core.Pin) (Marker, error)
	// AddOverlay renders a styled polygon layer under the given layer id.
	AddOverlay(id string, fc *geojson.FeatureCollection, style OverlayStyle) error
	// RemoveOverlay removes a previously added layer. Removing an unknown id
	// is a no-op.
	RemoveOverlay(id string) error
}

// Marker is the handle to one rendered, draggable map marker. Handles are
// ephemeral and fully reconstructable from their pin.
type Marker interface {
	SetPosition(core.LonLat)
	SetVisible(bool)
	Remove()
}

// OverlayStyle controls how the county overlay is drawn.
type OverlayStyle struct {
	BorderColor string
	BorderWidth float64
	FillColor   string
	FillOpacity float64
}

// overlayStyleFor picks a border color that contrasts with the basemap:
// light borders on dark imagery, dark borders otherwise.
func overlayStyleFor(b core.Basemap) OverlayStyle {
	style := OverlayStyle{
		BorderWidth: 2,
		FillColor:   "#888888",
		FillOpacity: 0.08,
	}
	if b.Dark() {
		style.BorderColor = "#f5f5f5"
	} else {
		style.BorderColor = "#2b2b2b"
	}
	return style
}
