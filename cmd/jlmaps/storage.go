package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/wright-research/jlawson-maps/internal/binder"
	"github.com/wright-research/jlawson-maps/internal/cache"
	"github.com/wright-research/jlawson-maps/internal/county"
	"github.com/wright-research/jlawson-maps/internal/database"
	"github.com/wright-research/jlawson-maps/internal/editor"
	"github.com/wright-research/jlawson-maps/internal/mapstate"
	"github.com/wright-research/jlawson-maps/internal/registry"
	"github.com/wright-research/jlawson-maps/internal/session"
	"github.com/wright-research/jlawson-maps/internal/store"
	gormstore "github.com/wright-research/jlawson-maps/internal/store/gorm"
	memorystore "github.com/wright-research/jlawson-maps/internal/store/memory"
)

// newStore selects the template backend from storage.type: "database"
// (Postgres with SQLite fallback) or "memory".
func (a *app) newStore() (store.Store, error) {
	switch storageType := viper.GetString("storage.type"); storageType {
	case "memory":
		a.logger.Info("Memory storage backend initialized")
		return memorystore.New(), nil
	case "database":
		zlog := zerolog.New(a.logWriter()).With().Timestamp().Logger()
		a.dbManager = database.NewManager(zlog)
		if err := a.dbManager.Connect(); err != nil {
			return nil, err
		}
		backend := gormstore.New(gormstore.Dependencies{
			DB:    a.dbManager.DB,
			Cache: cache.NewTemplateCache(),
		})
		if err := backend.Init(); err != nil {
			return nil, err
		}
		a.logger.Info("Database storage backend initialized",
			"dialect", a.dbManager.DB.Dialector.Name())
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage.type %q", storageType)
	}
}

// newCountyLoader builds the boundary loader from county.* and redis.*
// config.
func (a *app) newCountyLoader() (*county.Loader, error) {
	fetcher := county.NewHTTPFetcher(
		viper.GetString("county.baseUrl"),
		time.Duration(viper.GetInt("county.fetchTimeoutMs"))*time.Millisecond,
	)

	var redisOpts *redis.Options
	if viper.GetString("county.cache") == "redis" {
		redisOpts = &redis.Options{
			Addr:     viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		}
	}
	boundaryCache, err := county.NewCache(
		viper.GetString("county.cache"),
		redisOpts,
		time.Duration(viper.GetInt("redis.ttlMinutes"))*time.Minute,
	)
	if err != nil {
		return nil, fmt.Errorf("creating county cache: %w", err)
	}

	return county.NewLoader(fetcher, boundaryCache, a.logger), nil
}

// newEditor wires a headless editor over an in-memory surface. Commands
// that restore or capture templates run through it.
func (a *app) newEditor() (*editor.Service, error) {
	loader, err := a.newCountyLoader()
	if err != nil {
		return nil, err
	}

	surface := binder.NewMemorySurface()
	reg := registry.New()

	cfg := binder.DefaultConfig()
	cfg.DragGraceDelay = time.Duration(viper.GetInt("editor.dragGraceMs")) * time.Millisecond
	cfg.StyleLoadTimeout = time.Duration(viper.GetInt("editor.styleTimeoutMs")) * time.Millisecond
	bind := binder.New(surface, reg, loader, cfg, a.logger)

	return editor.NewService(editor.Dependencies{
		Store:      a.store,
		Registry:   reg,
		Serializer: mapstate.New(surface, reg, bind),
		Session:    session.NewContext(),
		Influx:     a.influxMgr,
		Logger:     a.logger,
	}), nil
}
