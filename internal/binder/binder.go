package binder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/wright-research/jlawson-maps/internal/county"
	"github.com/wright-research/jlawson-maps/internal/geo"
	"github.com/wright-research/jlawson-maps/internal/registry"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

// OverlayLayerID is the surface layer id used for county boundaries.
const OverlayLayerID = "county-boundaries"

// ErrStyleLoadTimeout is returned when the style-loaded or idle signal does
// not fire within the configured window, typically because the style fetch
// failed. The original client waited forever here; we surface it instead.
var ErrStyleLoadTimeout = errors.New("basemap style did not finish loading in time")

// Config holds binder tuning knobs.
type Config struct {
	// DragGraceDelay suppresses the click some platforms synthesize right
	// after a drag release. This is the one deliberate fixed-time debounce
	// in the system.
	DragGraceDelay time.Duration
	// StyleLoadTimeout bounds the wait for the style-loaded and idle signals
	// during a basemap swap.
	StyleLoadTimeout time.Duration
	// ClickRadiusMeters is the hit-test radius around existing markers.
	ClickRadiusMeters float64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		DragGraceDelay:    100 * time.Millisecond,
		StyleLoadTimeout:  15 * time.Second,
		ClickRadiusMeters: 25,
	}
}

// markerEntry binds one pin id to its rendered marker handle plus transient
// drag state.
type markerEntry struct {
	handle   Marker
	dragging bool
}

// Binder owns the marker arena for one editor instance. It mirrors the pin
// registry onto the surface and survives full style swaps.
type Binder struct {
	surface Surface
	reg     *registry.Registry
	loader  *county.Loader
	cfg     Config
	log     *slog.Logger

	mu        sync.Mutex
	markers   map[string]*markerEntry
	basemap   core.Basemap
	overlay   core.CountyOverlay
	overlayFC *geojson.FeatureCollection

	// overlayGen invalidates in-flight overlay fetches: a result is applied
	// only if no newer request started meanwhile.
	overlayGen atomic.Uint64
}

// New creates a binder over a surface. The registry stays the source of
// truth; the binder only renders it.
func New(surface Surface, reg *registry.Registry, loader *county.Loader, cfg Config, log *slog.Logger) *Binder {
	if cfg.DragGraceDelay <= 0 {
		cfg.DragGraceDelay = DefaultConfig().DragGraceDelay
	}
	if cfg.StyleLoadTimeout <= 0 {
		cfg.StyleLoadTimeout = DefaultConfig().StyleLoadTimeout
	}
	if cfg.ClickRadiusMeters <= 0 {
		cfg.ClickRadiusMeters = DefaultConfig().ClickRadiusMeters
	}
	if log == nil {
		log = slog.Default()
	}
	return &Binder{
		surface: surface,
		reg:     reg,
		loader:  loader,
		cfg:     cfg,
		log:     log,
		markers: make(map[string]*markerEntry),
		basemap: core.BasemapStreet,
		overlay: core.CountyOverlay{SelectedCounties: []string{}},
	}
}

// HandleClick processes a map click. The click is ignored if it lands on an
// existing marker or arrives inside a post-drag grace window; otherwise a
// pin is created in the active category and rendered. Returns the new pin,
// or nil when the click was ignored.
func (b *Binder) HandleClick(pos core.LonLat) (*core.Pin, error) {
	b.mu.Lock()
	if b.anyDraggingLocked() || b.hitTestLocked(pos) {
		b.mu.Unlock()
		return nil, nil
	}
	b.mu.Unlock()

	pin, err := b.reg.AddPin(b.reg.ActiveCategory(), pos)
	if err != nil {
		return nil, err
	}
	if err := b.addMarker(pin); err != nil {
		return nil, err
	}
	pinsAdded.Add(context.Background(), 1)
	return &pin, nil
}

// BeginDrag marks a marker as mid-gesture. Clicks are suppressed until the
// gesture's grace window expires.
func (b *Binder) BeginDrag(pinID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.markers[pinID]; ok {
		e.dragging = true
	}
}

// DragTo streams an in-progress position to the registry and the marker.
// Called at gesture frequency, so it does no rebuilding.
func (b *Binder) DragTo(pinID string, pos core.LonLat) error {
	if err := b.reg.MovePin(pinID, pos); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.markers[pinID]; ok {
		e.handle.SetPosition(pos)
	}
	return nil
}

// EndDrag commits the final position and clears the dragging flag after the
// configured grace delay, suppressing the click some platforms synthesize on
// release.
func (b *Binder) EndDrag(pinID string, pos core.LonLat) error {
	if err := b.reg.MovePin(pinID, pos); err != nil {
		return err
	}
	b.mu.Lock()
	e, ok := b.markers[pinID]
	if ok {
		e.handle.SetPosition(pos)
	}
	b.mu.Unlock()
	if ok {
		time.AfterFunc(b.cfg.DragGraceDelay, func() {
			b.mu.Lock()
			e.dragging = false
			b.mu.Unlock()
		})
	}
	return nil
}

// IsDragging reports whether a marker is inside a gesture or its grace
// window.
func (b *Binder) IsDragging(pinID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.markers[pinID]
	return ok && e.dragging
}

// SwitchCategory changes the active category and shows only its markers.
// O(n) over markers, no geometry work.
func (b *Binder) SwitchCategory(c core.Category) error {
	if err := b.reg.SetActiveCategory(c); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, e := range b.markers {
		pin, ok := b.reg.Get(id)
		if !ok {
			continue
		}
		e.handle.SetVisible(pin.Category == c)
	}
	return nil
}

// RemovePin deletes a pin from the registry and tears down its marker.
func (b *Binder) RemovePin(pinID string) error {
	if err := b.reg.DeletePin(pinID); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.markers[pinID]; ok {
		e.handle.Remove()
		delete(b.markers, pinID)
	}
	return nil
}

// SwitchBasemap replaces the underlying style. The swap destroys overlay
// layers but not markers; camera, overlay and category selection must look
// unchanged afterwards. Steps are event-gated on the surface's signals, not
// timed, and the whole swap is bounded by StyleLoadTimeout. Returning nil is
// the completion signal callers sequence on.
func (b *Binder) SwitchBasemap(ctx context.Context, target core.Basemap) error {
	if !target.Valid() {
		return fmt.Errorf("unknown basemap %q", target)
	}
	start := time.Now()

	// 1. Snapshot camera and overlay state before touching the style.
	camera := b.surface.Camera()
	b.mu.Lock()
	overlay := b.overlay
	overlayFC := b.overlayFC
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, b.cfg.StyleLoadTimeout)
	defer cancel()

	// 2-3. Request the swap and wait for the style-loaded signal. The
	// request's immediate return means nothing; the new style is not
	// queryable until this fires.
	loaded := b.surface.SetStyle(target)
	select {
	case <-loaded:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStyleLoadTimeout, ctx.Err())
	}

	// 4. Re-apply the snapshot instantaneously so the viewport doesn't jump.
	b.surface.JumpTo(camera)

	// 5. Wait for rendering to settle before re-adding sources.
	select {
	case <-b.surface.Idle():
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStyleLoadTimeout, ctx.Err())
	}

	b.mu.Lock()
	b.basemap = target
	b.mu.Unlock()

	// 6. Re-add the overlay only if it was enabled with a selection.
	if overlay.Active() {
		if overlayFC != nil {
			if err := b.surface.AddOverlay(OverlayLayerID, overlayFC, overlayStyleFor(target)); err != nil {
				return fmt.Errorf("re-adding county overlay: %w", err)
			}
		} else if err := b.SetCountyOverlay(ctx, overlay); err != nil {
			return err
		}
	}

	styleSwapDuration.Record(context.Background(), time.Since(start).Seconds())
	return nil
}

// SetCountyOverlay updates the overlay selection. The fetch runs without the
// binder lock; a per-request generation counter discards stale results so a
// slow fetch can't overwrite a newer selection.
func (b *Binder) SetCountyOverlay(ctx context.Context, overlay core.CountyOverlay) error {
	overlay.SelectedCounties = core.NormalizeCounties(overlay.SelectedCounties)
	gen := b.overlayGen.Add(1)

	if !overlay.Active() {
		b.mu.Lock()
		b.overlay = overlay
		b.overlayFC = nil
		b.mu.Unlock()
		return b.surface.RemoveOverlay(OverlayLayerID)
	}

	fc, err := b.loader.Load(ctx, overlay.SelectedCounties)
	if err != nil {
		return fmt.Errorf("loading county boundaries: %w", err)
	}

	if b.overlayGen.Load() != gen {
		b.log.Debug("discarding stale county overlay result", "counties", overlay.SelectedCounties)
		return nil
	}

	b.mu.Lock()
	b.overlay = overlay
	b.overlayFC = fc
	basemap := b.basemap
	b.mu.Unlock()

	if err := b.surface.RemoveOverlay(OverlayLayerID); err != nil {
		return err
	}
	return b.surface.AddOverlay(OverlayLayerID, fc, overlayStyleFor(basemap))
}

// RebuildMarkers tears down every marker handle and recreates them from the
// registry, then applies the active category filter. Used when restoring a
// template.
func (b *Binder) RebuildMarkers() error {
	b.mu.Lock()
	for id, e := range b.markers {
		e.handle.Remove()
		delete(b.markers, id)
	}
	b.mu.Unlock()

	active := b.reg.ActiveCategory()
	for _, pin := range b.reg.All() {
		if err := b.addMarker(pin); err != nil {
			return err
		}
		b.mu.Lock()
		b.markers[pin.ID].handle.SetVisible(pin.Category == active)
		b.mu.Unlock()
	}
	return nil
}

// Basemap returns the basemap currently applied.
func (b *Binder) Basemap() core.Basemap {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.basemap
}

// Overlay returns the current overlay selection.
func (b *Binder) Overlay() core.CountyOverlay {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlay
}

// MarkerCount returns the number of live marker handles.
func (b *Binder) MarkerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.markers)
}

func (b *Binder) addMarker(pin core.Pin) error {
	handle, err := b.surface.AddMarker(pin)
	if err != nil {
		return fmt.Errorf("creating marker for %s: %w", pin.ID, err)
	}
	b.mu.Lock()
	b.markers[pin.ID] = &markerEntry{handle: handle}
	b.mu.Unlock()
	return nil
}

// hitTestLocked reports whether a click position lands on a rendered marker.
func (b *Binder) hitTestLocked(pos core.LonLat) bool {
	for id := range b.markers {
		pin, ok := b.reg.Get(id)
		if !ok {
			continue
		}
		if geo.MetersBetween(pos, pin.Position) <= b.cfg.ClickRadiusMeters {
			return true
		}
	}
	return false
}

func (b *Binder) anyDraggingLocked() bool {
	for _, e := range b.markers {
		if e.dragging {
			return true
		}
	}
	return false
}
