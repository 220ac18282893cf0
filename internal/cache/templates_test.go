package cache

import (
	"testing"
	"time"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

func TestTemplateCache_EmptyByDefault(t *testing.T) {
	c := NewTemplateCache()
	if _, ok := c.Get(); ok {
		t.Error("expected empty cache to miss")
	}
}

func TestTemplateCache_SetGetReset(t *testing.T) {
	c := NewTemplateCache()
	rows := []core.TemplateSummary{
		{ID: "a", Name: "Downtown comps", UpdatedAt: time.Now()},
		{ID: "b", Name: "Hall county land", UpdatedAt: time.Now()},
	}
	c.Set(rows)

	got, ok := c.Get()
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("unexpected cached rows: %+v", got)
	}

	// Mutating the returned slice must not corrupt the cache.
	got[0].ID = "mutated"
	again, _ := c.Get()
	if again[0].ID != "a" {
		t.Error("cache returned shared slice")
	}

	c.Reset()
	if _, ok := c.Get(); ok {
		t.Error("expected miss after reset")
	}
}

func TestTemplateCache_SetEmptyListingIsAHit(t *testing.T) {
	c := NewTemplateCache()
	c.Set([]core.TemplateSummary{})
	got, ok := c.Get()
	if !ok {
		t.Fatal("empty listing should still be cached")
	}
	if len(got) != 0 {
		t.Errorf("expected empty listing, got %d rows", len(got))
	}
}
