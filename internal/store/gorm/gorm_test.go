package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wright-research/jlawson-maps/internal/store"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	b := New(Dependencies{DB: db})
	if err := b.Init(); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return b
}

func TestCreateGetRoundTrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	state := core.NewMapState()
	state.Basemap = core.BasemapGray
	state.PinsByCategory[core.CategorySales] = []core.Pin{
		{ID: "pin-1", Position: core.LonLat{Lon: -84.0, Lat: 33.0}, DisplayNumber: 1, Category: core.CategorySales},
	}

	created, err := b.Create(ctx, "river tracts", state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := b.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "river tracts" {
		t.Errorf("name mismatch: %q", got.Name)
	}
	if got.MapState.Basemap != core.BasemapGray {
		t.Errorf("basemap mismatch: %s", got.MapState.Basemap)
	}
	pins := got.MapState.PinsByCategory[core.CategorySales]
	if len(pins) != 1 || pins[0].ID != "pin-1" {
		t.Errorf("pins did not round-trip: %+v", pins)
	}
}

func TestCreate_EmptyName(t *testing.T) {
	b := newTestBackend(t)
	if _, err := b.Create(context.Background(), "", core.NewMapState()); !errors.Is(err, store.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestUpdate_AndListCacheInvalidation(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	created, _ := b.Create(ctx, "before", core.NewMapState())

	// Prime the listing cache.
	rows, err := b.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "before" {
		t.Fatalf("unexpected listing: %+v", rows)
	}

	if _, err := b.Update(ctx, created.ID, "after", core.NewMapState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, _ = b.List(ctx)
	if len(rows) != 1 || rows[0].Name != "after" {
		t.Errorf("listing served stale cache: %+v", rows)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	b := newTestBackend(t)
	if _, err := b.Update(context.Background(), "missing", "x", core.NewMapState()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetNoteAndDelete(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	created, _ := b.Create(ctx, "noted", core.NewMapState())
	if err := b.SetNote(ctx, created.ID, "seller motivated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := b.Get(ctx, created.ID)
	if got.Note != "seller motivated" {
		t.Errorf("note mismatch: %q", got.Note)
	}

	if err := b.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Get(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := b.SetNote(ctx, created.ID, "x"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
