// Package gormstore implements the store.Store interface on a GORM
// database (Postgres, or the SQLite fallback).
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wright-research/jlawson-maps/internal/cache"
	"github.com/wright-research/jlawson-maps/internal/model"
	"github.com/wright-research/jlawson-maps/internal/store"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

// Dependencies holds what the backend needs.
type Dependencies struct {
	DB    *gorm.DB
	Cache *cache.TemplateCache
}

// Backend persists templates through GORM. Listing is cached until the next
// write.
type Backend struct {
	db    *gorm.DB
	cache *cache.TemplateCache
}

// New creates a new GORM backend.
func New(deps Dependencies) *Backend {
	c := deps.Cache
	if c == nil {
		c = cache.NewTemplateCache()
	}
	return &Backend{db: deps.DB, cache: c}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	return b.db.AutoMigrate(model.DatabaseModels...)
}

// Close is a no-op; the connection is owned by the database manager.
func (b *Backend) Close() error { return nil }

// List returns summaries ordered by update time, newest first.
func (b *Backend) List(ctx context.Context) ([]core.TemplateSummary, error) {
	if rows, ok := b.cache.Get(); ok {
		return rows, nil
	}

	var rows []model.Template
	err := b.db.WithContext(ctx).
		Select("id", "name", "note", "updated_at").
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	out := make([]core.TemplateSummary, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Summary())
	}
	b.cache.Set(out)
	return out, nil
}

// Get returns a full template by id.
func (b *Backend) Get(ctx context.Context, id string) (core.Template, error) {
	var row model.Template
	err := b.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Template{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return core.Template{}, fmt.Errorf("loading template %s: %w", id, err)
	}
	return row.ToCore()
}

// Create persists a new template.
func (b *Backend) Create(ctx context.Context, name string, state core.MapState) (core.Template, error) {
	if name == "" {
		return core.Template{}, store.ErrEmptyName
	}
	encoded, err := model.EncodeState(state)
	if err != nil {
		return core.Template{}, err
	}

	row := model.Template{
		ID:       uuid.NewString(),
		Name:     name,
		MapState: encoded,
	}
	if err := b.db.WithContext(ctx).Create(&row).Error; err != nil {
		return core.Template{}, fmt.Errorf("creating template: %w", err)
	}
	b.cache.Reset()
	return row.ToCore()
}

// Update replaces a template's name and map state.
func (b *Backend) Update(ctx context.Context, id, name string, state core.MapState) (core.Template, error) {
	if name == "" {
		return core.Template{}, store.ErrEmptyName
	}
	encoded, err := model.EncodeState(state)
	if err != nil {
		return core.Template{}, err
	}

	res := b.db.WithContext(ctx).Model(&model.Template{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "map_state": encoded})
	if res.Error != nil {
		return core.Template{}, fmt.Errorf("updating template %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.Template{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	b.cache.Reset()
	return b.Get(ctx, id)
}

// SetNote replaces a template's note.
func (b *Backend) SetNote(ctx context.Context, id, note string) error {
	res := b.db.WithContext(ctx).Model(&model.Template{}).
		Where("id = ?", id).
		Update("note", note)
	if res.Error != nil {
		return fmt.Errorf("updating note on %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	b.cache.Reset()
	return nil
}

// Delete removes a template.
func (b *Backend) Delete(ctx context.Context, id string) error {
	res := b.db.WithContext(ctx).Delete(&model.Template{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting template %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	b.cache.Reset()
	return nil
}

var _ store.Store = (*Backend)(nil)
