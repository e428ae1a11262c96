package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klfajardo/registro-evento-chile/internal/config"
	"github.com/klfajardo/registro-evento-chile/internal/dependencies/clock"
	"github.com/klfajardo/registro-evento-chile/internal/dependencies/ids"
	"github.com/klfajardo/registro-evento-chile/internal/fallback"
	"github.com/klfajardo/registro-evento-chile/internal/metrics"
	"github.com/klfajardo/registro-evento-chile/internal/model"
	"github.com/klfajardo/registro-evento-chile/internal/services/access"
	"github.com/klfajardo/registro-evento-chile/internal/services/badge"
	"github.com/klfajardo/registro-evento-chile/internal/services/query"
	"github.com/klfajardo/registro-evento-chile/internal/services/registration"
	"github.com/klfajardo/registro-evento-chile/internal/storage"
	airtablestorage "github.com/klfajardo/registro-evento-chile/internal/storage/airtable"
	"github.com/klfajardo/registro-evento-chile/internal/storage/memory"
	redisstorage "github.com/klfajardo/registro-evento-chile/internal/storage/redis"
	sqlitestorage "github.com/klfajardo/registro-evento-chile/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Store    storage.Store
	Fallback *fallback.Writer

	// External dependencies
	Clock   clock.Clock
	IDs     ids.Generator
	Metrics *metrics.Metrics

	// Services
	Registration *registration.Service
	Badge        *badge.Service
	Access       *access.Service
	Query        *query.Service

	// Settings the HTTP layer needs
	AdminToken  string
	DefaultSite string

	closer io.Closer
}

// Close releases the store's connections, if it holds any
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// New creates a new application with all dependencies wired.
// A nil logger discards output.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("record store ready", slog.String("type", cfg.Storage.Type))

	deps := dependencies{
		store:    store,
		fallback: fallback.NewWriter(cfg.FallbackFile),
		clock:    clock.New(),
		ids:      ids.New(),
		metrics:  metrics.New(),
	}
	app := newWithDependencies(deps, cfg, logger)
	app.closer = closer
	return app, nil
}

func newStore(ctx context.Context, cfg config.Config) (storage.Store, io.Closer, error) {
	switch cfg.Storage.Type {
	case "", config.StorageMemory:
		return memory.New(), nil, nil

	case config.StorageRedis:
		if cfg.Storage.RedisURL == "" {
			return nil, nil, errors.New("redis URL required when storage type is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		s, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return s, s, nil

	case config.StorageSQLite:
		db, err := sqlitestorage.Open(ctx, sqlitestorage.Config{Path: cfg.Storage.SQLitePath})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		s := sqlitestorage.New(db)
		return s, s, nil

	case config.StorageAirtable:
		atCfg := airtablestorage.DefaultConfig()
		atCfg.APIKey = cfg.Airtable.APIKey
		atCfg.BaseID = cfg.Airtable.BaseID
		atCfg.RequestsPerSecond = cfg.Airtable.RateLimit
		atCfg.Tables = map[string]string{
			model.CollectionAttendees: cfg.Airtable.TableAttendees,
			model.CollectionAccess:    cfg.Airtable.TableAccess,
		}
		s, err := airtablestorage.New(atCfg)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	default:
		return nil, nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}
}

type dependencies struct {
	store    storage.Store
	fallback *fallback.Writer
	clock    clock.Clock
	ids      ids.Generator
	metrics  *metrics.Metrics
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg config.Config, logger *slog.Logger) *App {
	deps.store = storage.Observed(deps.store, deps.metrics.StoreUnavailable)
	return &App{
		Store:        deps.store,
		Fallback:     deps.fallback,
		Clock:        deps.clock,
		IDs:          deps.ids,
		Metrics:      deps.metrics,
		Registration: registration.New(deps.store, deps.fallback, deps.ids, deps.clock, deps.metrics, logger),
		Badge:        badge.New(deps.store, deps.fallback, deps.clock, deps.metrics, logger),
		Access:       access.New(deps.store, deps.fallback, deps.clock, deps.metrics, logger),
		Query:        query.New(deps.store, cfg.LookupTimeout.Duration, logger),
		AdminToken:   cfg.AdminToken,
		DefaultSite:  cfg.DefaultSite,
	}
}
