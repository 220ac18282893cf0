// Package memorystore implements the store.Store interface in process
// memory. Used by tests and by the CLI when no database is reachable.
package memorystore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wright-research/jlawson-maps/internal/store"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

// Backend stores templates in a map.
type Backend struct {
	mu        sync.RWMutex
	templates map[string]core.Template
	now       func() time.Time
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{
		templates: make(map[string]core.Template),
		now:       time.Now,
	}
}

// Init initializes the backend.
func (b *Backend) Init() error { return nil }

// Close cleans up resources.
func (b *Backend) Close() error { return nil }

// List returns summaries ordered by update time, newest first.
func (b *Backend) List(_ context.Context) ([]core.TemplateSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.TemplateSummary, 0, len(b.templates))
	for _, t := range b.templates {
		out = append(out, core.TemplateSummary{ID: t.ID, Name: t.Name, Note: t.Note, UpdatedAt: t.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Get returns a template by id.
func (b *Backend) Get(_ context.Context, id string) (core.Template, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.templates[id]
	if !ok {
		return core.Template{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return t, nil
}

// Create persists a new template.
func (b *Backend) Create(_ context.Context, name string, state core.MapState) (core.Template, error) {
	if name == "" {
		return core.Template{}, store.ErrEmptyName
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	t := core.Template{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		MapState:  state,
	}
	b.templates[t.ID] = t
	return t, nil
}

// Update replaces name and map state.
func (b *Backend) Update(_ context.Context, id, name string, state core.MapState) (core.Template, error) {
	if name == "" {
		return core.Template{}, store.ErrEmptyName
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.templates[id]
	if !ok {
		return core.Template{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	t.Name = name
	t.MapState = state
	t.UpdatedAt = b.now()
	b.templates[id] = t
	return t, nil
}

// SetNote replaces the note.
func (b *Backend) SetNote(_ context.Context, id, note string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.templates[id]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	t.Note = note
	t.UpdatedAt = b.now()
	b.templates[id] = t
	return nil
}

// Delete removes a template.
func (b *Backend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.templates[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	delete(b.templates, id)
	return nil
}
