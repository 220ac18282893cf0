package editor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/wright-research/jlawson-maps/internal/binder"
	"github.com/wright-research/jlawson-maps/internal/county"
	"github.com/wright-research/jlawson-maps/internal/mapstate"
	"github.com/wright-research/jlawson-maps/internal/registry"
	"github.com/wright-research/jlawson-maps/internal/session"
	"github.com/wright-research/jlawson-maps/internal/store"
	memorystore "github.com/wright-research/jlawson-maps/internal/store/memory"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

type fetcherFunc func(ctx context.Context, name string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

var countyPoly = []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)

func newService(t *testing.T) (*Service, *registry.Registry, *binder.MemorySurface) {
	t.Helper()
	surface := binder.NewMemorySurface()
	reg := registry.New()
	loader := county.NewLoader(fetcherFunc(func(_ context.Context, _ string) ([]byte, error) {
		return countyPoly, nil
	}), nil, nil)
	bind := binder.New(surface, reg, loader, binder.DefaultConfig(), nil)
	svc := NewService(Dependencies{
		Store:      memorystore.New(),
		Registry:   reg,
		Serializer: mapstate.New(surface, reg, bind),
		Session:    session.NewContext(),
	})
	return svc, reg, surface
}

func TestSaveTemplate_CreateThenUpdate(t *testing.T) {
	svc, reg, _ := newService(t)
	ctx := context.Background()

	reg.AddPin(core.CategorySales, core.LonLat{Lon: -84.0, Lat: 33.0})
	tpl, err := svc.SaveTemplate(ctx, "North Metro")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if tpl.ID == "" {
		t.Fatal("expected a generated id")
	}
	if id, name, ok := svc.Session().Current(); !ok || id != tpl.ID || name != "North Metro" {
		t.Errorf("session not tracking saved template: %q %q %v", id, name, ok)
	}

	// A second save with a template open must update, not create.
	reg.AddPin(core.CategoryRent, core.LonLat{Lon: -84.2, Lat: 33.2})
	tpl2, err := svc.SaveTemplate(ctx, "North Metro v2")
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if tpl2.ID != tpl.ID {
		t.Errorf("expected update of %s, got new id %s", tpl.ID, tpl2.ID)
	}

	list, err := svc.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 template, got %d", len(list))
	}
	if list[0].Name != "North Metro v2" {
		t.Errorf("expected renamed template, got %q", list[0].Name)
	}
}

func TestSaveTemplate_EmptyNameRejectedLocally(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.SaveTemplate(context.Background(), "   ")
	if !errors.Is(err, store.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	list, _ := svc.ListTemplates(context.Background())
	if len(list) != 0 {
		t.Errorf("blank name must not reach the store, found %d templates", len(list))
	}
}

func TestOpenTemplate_RestoresState(t *testing.T) {
	svc, reg, _ := newService(t)
	ctx := context.Background()

	reg.AddPin(core.CategorySales, core.LonLat{Lon: -84.0, Lat: 33.0})
	reg.AddPin(core.CategoryLand, core.LonLat{Lon: -84.3, Lat: 33.3})
	saved, err := svc.SaveTemplate(ctx, "Acreage")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Wipe the editor, then open the saved template into it.
	if err := svc.NewTemplate(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, _, ok := svc.Session().Current(); ok {
		t.Fatal("session should be clear after NewTemplate")
	}

	opened, err := svc.OpenTemplate(ctx, saved.ID)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !reflect.DeepEqual(opened.MapState, saved.MapState) {
		t.Errorf("map state mismatch:\nwant %+v\ngot  %+v", saved.MapState, opened.MapState)
	}
	if got := len(reg.Pins(core.CategoryLand)); got != 1 {
		t.Errorf("expected 1 land pin restored, got %d", got)
	}
	if id, _, ok := svc.Session().Current(); !ok || id != saved.ID {
		t.Errorf("session not tracking opened template, got %q %v", id, ok)
	}
}

func TestOpenTemplate_NotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.OpenTemplate(context.Background(), "no-such-id")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameTemplate_KeepsState(t *testing.T) {
	svc, reg, _ := newService(t)
	ctx := context.Background()

	reg.AddPin(core.CategorySales, core.LonLat{Lon: -84.0, Lat: 33.0})
	saved, err := svc.SaveTemplate(ctx, "Draft")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	renamed, err := svc.RenameTemplate(ctx, saved.ID, "Final")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "Final" {
		t.Errorf("expected name Final, got %q", renamed.Name)
	}
	if !reflect.DeepEqual(renamed.MapState, saved.MapState) {
		t.Error("rename must not alter map state")
	}
	if _, name, _ := svc.Session().Current(); name != "Final" {
		t.Errorf("session name not updated, got %q", name)
	}
}

func TestDeleteTemplate_ClearsSession(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	saved, err := svc.SaveTemplate(ctx, "Doomed")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := svc.DeleteTemplate(ctx, saved.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, ok := svc.Session().Current(); ok {
		t.Error("session should clear when the open template is deleted")
	}
	if _, err := svc.OpenTemplate(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	svc, reg, _ := newService(t)
	ctx := context.Background()

	reg.AddPin(core.CategorySales, core.LonLat{Lon: -84.0, Lat: 33.0})
	reg.AddPin(core.CategoryRent, core.LonLat{Lon: -84.1, Lat: 33.1})
	saved, err := svc.SaveTemplate(ctx, "Portable")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := svc.SetNote(ctx, saved.ID, "two pins"); err != nil {
		t.Fatalf("set note failed: %v", err)
	}

	data, err := svc.ExportTemplate(ctx, saved.ID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	imported, err := svc.ImportTemplate(ctx, data)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if imported.ID == saved.ID {
		t.Error("import must create a new template")
	}
	if imported.Name != "Portable" || imported.Note != "two pins" {
		t.Errorf("metadata mismatch: %q %q", imported.Name, imported.Note)
	}
	got, err := svc.deps.Store.Get(ctx, imported.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !reflect.DeepEqual(got.MapState, saved.MapState) {
		t.Errorf("map state mismatch:\nwant %+v\ngot  %+v", saved.MapState, got.MapState)
	}
}

func TestImportTemplate_LegacyPinList(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	doc := []byte(`{
		"name": "Old Export",
		"mapState": {
			"center": [-84.5, 33.9], "zoom": 9, "bearing": 0, "pitch": 0,
			"basemap": "street",
			"pins": [{"id": "pin-1", "position": [-84.0, 33.0], "displayNumber": 1}]
		}
	}`)
	tpl, err := svc.ImportTemplate(ctx, doc)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if got := len(tpl.MapState.PinsByCategory[core.CategorySales]); got != 1 {
		t.Errorf("expected legacy pins in sales bucket, got %d", got)
	}
}

func TestImportTemplate_BadDocument(t *testing.T) {
	svc, _, _ := newService(t)

	if _, err := svc.ImportTemplate(context.Background(), []byte(`{nope`)); err == nil {
		t.Error("expected a parse error")
	}
	noName, _ := json.Marshal(map[string]any{"mapState": core.NewMapState()})
	if _, err := svc.ImportTemplate(context.Background(), noName); !errors.Is(err, store.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName for missing name, got %v", err)
	}
}
