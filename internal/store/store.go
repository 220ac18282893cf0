// Package store defines the template persistence contract.
package store

import (
	"context"
	"errors"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// ErrNotFound is returned when no template exists for an id.
var ErrNotFound = errors.New("template not found")

// ErrEmptyName is returned before any backend call when a template name is
// blank. Name validation is local; nothing is sent to the store.
var ErrEmptyName = errors.New("template name must not be empty")

// Store is the interface all template persistence backends must satisfy.
// Backend errors are returned unwrapped enough to be surfaced verbatim to
// the user; no operation is retried automatically.
type Store interface {
	// Lifecycle
	Init() error
	Close() error

	// List returns summaries of all templates, newest update first.
	List(ctx context.Context) ([]core.TemplateSummary, error)
	// Get returns a full template by id.
	Get(ctx context.Context, id string) (core.Template, error)
	// Create persists a new template and returns it with id and timestamps.
	Create(ctx context.Context, name string, state core.MapState) (core.Template, error)
	// Update replaces a template's name and map state.
	Update(ctx context.Context, id, name string, state core.MapState) (core.Template, error)
	// SetNote replaces a template's note.
	SetNote(ctx context.Context, id, note string) error
	// Delete removes a template.
	Delete(ctx context.Context, id string) error
}
