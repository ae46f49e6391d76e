// Package mlbdata is the embeddable data-access core for the hankstank
// analytics backend. A Client answers entity queries across past and
// current seasons, routing each request to the cheapest store that
// satisfies correctness and freshness: the in-process cache, the
// historical store for closed seasons, or the live StatsAPI. It also
// owns the background machinery that keeps the historical store
// populated: best-effort write-through backups and gap-driven season
// syncs.
package mlbdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hankstank/mlb-data/internal/api"
	"github.com/hankstank/mlb-data/internal/backup"
	"github.com/hankstank/mlb-data/internal/cache"
	"github.com/hankstank/mlb-data/internal/config"
	"github.com/hankstank/mlb-data/internal/model"
	"github.com/hankstank/mlb-data/internal/router"
	"github.com/hankstank/mlb-data/internal/season"
	"github.com/hankstank/mlb-data/internal/store"
	"github.com/hankstank/mlb-data/internal/syncer"
)

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Stats is a point-in-time snapshot of the core's runtime counters.
type Stats struct {
	Router router.Stats   `json:"router"`
	Cache  cache.Stats    `json:"cache"`
	Backup backup.Metrics `json:"backup"`
}

// Client composes the data-access core. Open it once per process and
// share it; all methods are safe for concurrent use.
type Client struct {
	cfg      *config.Config
	logger   *slog.Logger
	hist     *store.Store
	live     *api.Client
	calendar season.Calendar
	cache    *cache.Cache
	backup   *backup.Writer
	resolver *router.Resolver
	engine   *syncer.Engine
}

// Open validates cfg, connects the historical store, and starts the
// cache sweeper and backup workers. Callers must Close the client to
// drain queued backups.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	c := &Client{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	pool, err := store.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect historical store: %w", err)
	}
	c.hist = store.New(pool, c.logger)

	c.live = api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(c.logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)

	c.calendar = season.New(cfg.Seasons.First, time.Month(cfg.Seasons.RolloverMonth))

	c.cache = cache.New(cache.Config{SweepInterval: cfg.Cache.SweepInterval}, c.logger)
	if err := c.cache.Start(ctx); err != nil {
		c.hist.Close()
		return nil, fmt.Errorf("start cache: %w", err)
	}

	c.backup = backup.New(backup.Config{
		QueueSize: cfg.Backup.QueueSize,
		Workers:   cfg.Backup.Workers,
		Timeout:   cfg.Backup.Timeout,
	}, c.hist, c.calendar, c.logger)
	if err := c.backup.Start(ctx); err != nil {
		c.cache.Stop(ctx)
		c.hist.Close()
		return nil, fmt.Errorf("start backup writer: %w", err)
	}

	c.resolver = router.New(router.Config{
		ClosedSeasonTTL:  cfg.Cache.ClosedSeasonTTL,
		CurrentSeasonTTL: cfg.Cache.CurrentSeasonTTL,
	}, c.cache, c.hist, c.live, c.backup, c.calendar, c.logger)

	c.engine = syncer.New(syncer.Config{
		FetchDelay: cfg.Syncer.FetchDelay,
		Entities:   entityTypes(cfg.Syncer.Entities),
	}, c.live, c.hist, c.cache, c.calendar, c.logger)

	return c, nil
}

// Get resolves a single request.
func (c *Client) Get(ctx context.Context, req model.Request) (model.Payload, error) {
	return c.resolver.Resolve(ctx, req)
}

// SyncStatus reports historical coverage per monitored entity type.
func (c *Client) SyncStatus(ctx context.Context) ([]model.SyncStatus, error) {
	return c.engine.Status(ctx)
}

// SyncMissing backfills historical gaps.
func (c *Client) SyncMissing(ctx context.Context, opts syncer.Options) ([]model.SyncResult, error) {
	return c.engine.SyncMissing(ctx, opts)
}

// Engine exposes the sync engine for schedulers.
func (c *Client) Engine() *syncer.Engine {
	return c.engine
}

// Ping verifies the historical store connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.hist.Ping(ctx)
}

// Stats returns current runtime counters.
func (c *Client) Stats() Stats {
	return Stats{
		Router: c.resolver.Stats(),
		Cache:  c.cache.Stats(),
		Backup: c.backup.Stats(),
	}
}

// Close drains the backup queue, stops the cache sweeper, and closes
// the historical store. ctx bounds the drain.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if err := c.backup.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop backup writer: %w", err))
	}
	if err := c.cache.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop cache: %w", err))
	}
	c.hist.Close()
	return errors.Join(errs...)
}

// entityTypes converts validated config names; Config.Validate has
// already rejected unknown values.
func entityTypes(names []string) []model.EntityType {
	var entities []model.EntityType
	for _, name := range names {
		entities = append(entities, model.EntityType(name))
	}
	return entities
}
