// Package editor is the facade the view layer drives: template CRUD on
// top of the store, plus open/save which move whole map states through
// the serializer.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wright-research/jlawson-maps/internal/influx"
	"github.com/wright-research/jlawson-maps/internal/mapstate"
	"github.com/wright-research/jlawson-maps/internal/registry"
	"github.com/wright-research/jlawson-maps/internal/session"
	"github.com/wright-research/jlawson-maps/internal/store"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

// Dependencies holds everything a Service needs.
type Dependencies struct {
	Store      store.Store
	Registry   *registry.Registry
	Serializer *mapstate.Serializer
	Session    *session.Context
	Influx     *influx.Manager
	Logger     *slog.Logger
}

// Service provides the template operations the view controller calls.
// Store errors are returned verbatim so the caller can surface them.
type Service struct {
	deps Dependencies
}

// NewService creates a Service. Logger falls back to slog.Default.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// Session returns the session context.
func (s *Service) Session() *session.Context {
	return s.deps.Session
}

// Registry returns the live pin registry.
func (s *Service) Registry() *registry.Registry {
	return s.deps.Registry
}

// Serializer returns the map state serializer.
func (s *Service) Serializer() *mapstate.Serializer {
	return s.deps.Serializer
}

// ListTemplates returns all template summaries, newest update first.
func (s *Service) ListTemplates(ctx context.Context) ([]core.TemplateSummary, error) {
	return s.deps.Store.List(ctx)
}

// NewTemplate resets the editor to a fresh default map state with no
// template open. Nothing is persisted until SaveTemplate.
func (s *Service) NewTemplate(ctx context.Context) error {
	if err := s.deps.Serializer.Apply(ctx, core.NewMapState()); err != nil {
		return err
	}
	s.deps.Session.Clear()
	s.deps.Logger.Info("editor reset to blank template")
	return nil
}

// OpenTemplate loads a template by id and applies its map state to the
// editor. The session tracks the opened template afterwards.
func (s *Service) OpenTemplate(ctx context.Context, id string) (core.Template, error) {
	start := time.Now()

	tpl, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		return core.Template{}, err
	}
	if err := s.deps.Serializer.Apply(ctx, tpl.MapState); err != nil {
		return core.Template{}, fmt.Errorf("applying template %q: %w", tpl.Name, err)
	}
	s.deps.Session.Open(tpl.ID, tpl.Name)

	s.deps.Logger.Info("template opened",
		"id", tpl.ID, "name", tpl.Name, "took", time.Since(start))
	s.writeOpPoint(ctx, "open", tpl.ID, time.Since(start))
	return tpl, nil
}

// SaveTemplate captures the current map state and persists it. With a
// template open it updates that template; otherwise it creates a new one.
// A blank name is rejected before any backend call.
func (s *Service) SaveTemplate(ctx context.Context, name string) (core.Template, error) {
	if strings.TrimSpace(name) == "" {
		return core.Template{}, store.ErrEmptyName
	}
	start := time.Now()
	state := s.deps.Serializer.Capture()

	var (
		tpl core.Template
		err error
		op  = "create"
	)
	if id, _, ok := s.deps.Session.Current(); ok {
		op = "update"
		tpl, err = s.deps.Store.Update(ctx, id, name, state)
	} else {
		tpl, err = s.deps.Store.Create(ctx, name, state)
	}
	if err != nil {
		return core.Template{}, err
	}
	s.deps.Session.Open(tpl.ID, tpl.Name)

	s.deps.Logger.Info("template saved",
		"id", tpl.ID, "name", tpl.Name, "op", op, "took", time.Since(start))
	s.writeOpPoint(ctx, op, tpl.ID, time.Since(start))
	return tpl, nil
}

// RenameTemplate changes a template's name without touching its map state.
func (s *Service) RenameTemplate(ctx context.Context, id, name string) (core.Template, error) {
	if strings.TrimSpace(name) == "" {
		return core.Template{}, store.ErrEmptyName
	}
	tpl, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		return core.Template{}, err
	}
	tpl, err = s.deps.Store.Update(ctx, id, name, tpl.MapState)
	if err != nil {
		return core.Template{}, err
	}
	if sid, _, ok := s.deps.Session.Current(); ok && sid == id {
		s.deps.Session.Open(tpl.ID, tpl.Name)
	}
	return tpl, nil
}

// SetNote replaces a template's note.
func (s *Service) SetNote(ctx context.Context, id, note string) error {
	return s.deps.Store.SetNote(ctx, id, note)
}

// DeleteTemplate removes a template. Deleting the open template clears
// the session; the live editor state is left untouched.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.deps.Store.Delete(ctx, id); err != nil {
		return err
	}
	if sid, _, ok := s.deps.Session.Current(); ok && sid == id {
		s.deps.Session.Clear()
	}
	s.deps.Logger.Info("template deleted", "id", id)
	s.writeOpPoint(ctx, "delete", id, 0)
	return nil
}

// exportDoc is the portable template file format.
type exportDoc struct {
	Name     string        `json:"name"`
	Note     string        `json:"note,omitempty"`
	MapState core.MapState `json:"mapState"`
}

// ExportTemplate serializes a template to portable JSON.
func (s *Service) ExportTemplate(ctx context.Context, id string) ([]byte, error) {
	tpl, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(exportDoc{
		Name:     tpl.Name,
		Note:     tpl.Note,
		MapState: tpl.MapState,
	}, "", "  ")
}

// ImportTemplate creates a template from exported JSON. Legacy documents
// with a flat pin list are accepted through the MapState decoder.
func (s *Service) ImportTemplate(ctx context.Context, data []byte) (core.Template, error) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Template{}, fmt.Errorf("parsing template document: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return core.Template{}, store.ErrEmptyName
	}
	tpl, err := s.deps.Store.Create(ctx, doc.Name, doc.MapState)
	if err != nil {
		return core.Template{}, err
	}
	if doc.Note != "" {
		if err := s.deps.Store.SetNote(ctx, tpl.ID, doc.Note); err != nil {
			return core.Template{}, err
		}
		tpl.Note = doc.Note
	}
	return tpl, nil
}

func (s *Service) writeOpPoint(ctx context.Context, op, id string, took time.Duration) {
	if s.deps.Influx == nil {
		return
	}
	bucket, point := influx.TemplateOpPoint(op, id, took)
	if err := s.deps.Influx.WritePoint(ctx, bucket, point); err != nil {
		s.deps.Logger.Warn("metric write failed", "op", op, "error", err.Error())
	}
}
