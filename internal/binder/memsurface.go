package binder

import (
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// MemorySurface is a headless Surface. Style swaps complete immediately and
// rendered objects are plain records. It backs the CLI, which needs to
// restore and capture templates without a real map runtime, and is handy in
// tests.
type MemorySurface struct {
	mu       sync.Mutex
	camera   core.Camera
	style    core.Basemap
	markers  map[string]*MemoryMarker
	overlays map[string]*geojson.FeatureCollection

	done chan struct{}
}

// NewMemorySurface creates a surface with the street style applied.
func NewMemorySurface() *MemorySurface {
	done := make(chan struct{})
	close(done)
	return &MemorySurface{
		style:    core.BasemapStreet,
		markers:  make(map[string]*MemoryMarker),
		overlays: make(map[string]*geojson.FeatureCollection),
		done:     done,
	}
}

// Camera returns the current viewport pose.
func (s *MemorySurface) Camera() core.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// JumpTo applies a camera pose.
func (s *MemorySurface) JumpTo(c core.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = c
}

// SetStyle swaps the style, dropping style-scoped overlays. The load signal
// fires immediately.
func (s *MemorySurface) SetStyle(b core.Basemap) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = b
	s.overlays = make(map[string]*geojson.FeatureCollection)
	return s.done
}

// Idle reports render-settled immediately.
func (s *MemorySurface) Idle() <-chan struct{} {
	return s.done
}

// Style returns the currently applied style.
func (s *MemorySurface) Style() core.Basemap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// AddMarker records a marker for the pin.
func (s *MemorySurface) AddMarker(pin core.Pin) (Marker, error) {
	m := &MemoryMarker{surface: s, id: pin.ID, pos: pin.Position, visible: true}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[pin.ID] = m
	return m, nil
}

// AddOverlay records an overlay layer.
func (s *MemorySurface) AddOverlay(id string, fc *geojson.FeatureCollection, _ OverlayStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays[id] = fc
	return nil
}

// RemoveOverlay drops an overlay layer.
func (s *MemorySurface) RemoveOverlay(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overlays, id)
	return nil
}

// Overlay returns a recorded overlay layer.
func (s *MemorySurface) Overlay(id string) (*geojson.FeatureCollection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fc, ok := s.overlays[id]
	return fc, ok
}

// MarkerCount returns the number of live markers.
func (s *MemorySurface) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// MemoryMarker is the MemorySurface marker record.
type MemoryMarker struct {
	surface *MemorySurface
	id      string
	pos     core.LonLat
	visible bool
}

// SetPosition moves the marker.
func (m *MemoryMarker) SetPosition(p core.LonLat) {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.pos = p
}

// SetVisible toggles the marker.
func (m *MemoryMarker) SetVisible(v bool) {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.visible = v
}

// Remove deletes the marker from its surface.
func (m *MemoryMarker) Remove() {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	delete(m.surface.markers, m.id)
}

var _ Surface = (*MemorySurface)(nil)
