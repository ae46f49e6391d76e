package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hankstank/mlb-data/internal/model"
	"github.com/hankstank/mlb-data/internal/season"
)

// LiveSource resolves a request against the upstream provider.
type LiveSource interface {
	Fetch(ctx context.Context, req model.Request) (model.Payload, error)
}

// HistoricalStore serves closed-season records.
type HistoricalStore interface {
	Query(ctx context.Context, entity model.EntityType, seasonYear int, naturalKey string) ([]model.HistoricalRecord, error)
}

// Cache is the read-through cache slice the resolver needs.
type Cache interface {
	Get(key string) (model.Payload, bool)
	Set(key string, value model.Payload, ttl time.Duration)
}

// BackupWriter schedules best-effort persistence of live payloads.
type BackupWriter interface {
	Enqueue(entity model.EntityType, naturalKey string, seasonYear int, payload model.Payload)
}

// Config holds resolver settings.
type Config struct {
	ClosedSeasonTTL  time.Duration // cache TTL for immutable closed-season data
	CurrentSeasonTTL time.Duration // cache TTL for still-mutable live data
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ClosedSeasonTTL:  24 * time.Hour,
		CurrentSeasonTTL: 5 * time.Minute,
	}
}

// Stats contains runtime counters.
type Stats struct {
	CacheHits      int64
	HistoricalHits int64
	LiveFetches    int64
	StaleServes    int64
	Errors         int64
}

// Resolver decides, per request, which store satisfies correctness and
// freshness at minimum cost: cache, then historical store for closed
// seasons, then the live source, with a stale historical read as the
// last resort when the live source is down.
type Resolver struct {
	cfg      Config
	cache    Cache
	store    HistoricalStore
	live     LiveSource
	backup   BackupWriter
	calendar season.Calendar
	logger   *slog.Logger

	// Collapses concurrent identical live fetches into one upstream call.
	group singleflight.Group

	mu    sync.Mutex
	stats Stats
}

// New creates a Resolver. backup may be nil to disable write-through.
func New(cfg Config, cache Cache, store HistoricalStore, live LiveSource, backup BackupWriter, calendar season.Calendar, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClosedSeasonTTL <= 0 {
		cfg.ClosedSeasonTTL = DefaultConfig().ClosedSeasonTTL
	}
	if cfg.CurrentSeasonTTL <= 0 {
		cfg.CurrentSeasonTTL = DefaultConfig().CurrentSeasonTTL
	}
	return &Resolver{
		cfg:      cfg,
		cache:    cache,
		store:    store,
		live:     live,
		backup:   backup,
		calendar: calendar,
		logger:   logger,
	}
}

// Resolve answers a single request.
func (r *Resolver) Resolve(ctx context.Context, req model.Request) (model.Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNotFound, err)
	}

	key := req.CacheKey()

	// Step 1: unexpired cache hit answers without touching any store.
	if payload, ok := r.cache.Get(key); ok {
		r.count(func(s *Stats) { s.CacheHits++ })
		return payload, nil
	}

	// Step 2: historical eligibility. Mirrored entity AND closed season;
	// current and future seasons are categorically excluded because their
	// upstream data is still mutable.
	eligible := req.Entity.Mirrored() && r.calendar.Closed(req.Season)

	// Step 3: historical store. Errors and empty results both fall
	// through to live; historical unavailability is never fatal when live
	// data can substitute.
	if eligible {
		if payload, ok := r.fromHistorical(ctx, req); ok {
			r.cache.Set(key, payload, r.cfg.ClosedSeasonTTL)
			r.count(func(s *Stats) { s.HistoricalHits++ })
			return payload, nil
		}
	}

	// Step 4: live source, collapsed per cache key.
	payload, err := r.fromLive(ctx, req)
	if err == nil {
		r.cache.Set(key, payload, r.ttlFor(req.Season))
		if r.backup != nil {
			r.backup.Enqueue(req.Entity, req.NaturalKey, req.Season, payload)
		}
		r.count(func(s *Stats) { s.LiveFetches++ })
		return payload, nil
	}

	if errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	// Step 5: live is down. For eligible requests, one stale historical
	// read before surfacing the error.
	if eligible {
		if payload, ok := r.fromHistorical(ctx, req); ok {
			r.logger.Warn("live source unavailable, serving stale historical data",
				"entity", req.Entity,
				"season", req.Season,
				"err", err,
			)
			r.count(func(s *Stats) { s.StaleServes++ })
			return payload, nil
		}
	}

	r.count(func(s *Stats) { s.Errors++ })
	return nil, fmt.Errorf("resolve %s season %d: %w", req.Entity, req.Season, err)
}

// Stats returns current counters.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// fromHistorical queries the historical store and assembles a payload.
// Any failure is logged and reported as a miss.
func (r *Resolver) fromHistorical(ctx context.Context, req model.Request) (model.Payload, bool) {
	records, err := r.store.Query(ctx, req.Entity, req.Season, req.NaturalKey)
	if err != nil {
		r.logger.Warn("historical query failed, falling through to live",
			"entity", req.Entity,
			"season", req.Season,
			"err", err,
		)
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}

	payload, err := assemble(records)
	if err != nil {
		r.logger.Warn("historical payload assembly failed",
			"entity", req.Entity,
			"season", req.Season,
			"err", err,
		)
		return nil, false
	}
	return payload, true
}

// fromLive fetches from the upstream provider, deduplicating concurrent
// identical requests.
func (r *Resolver) fromLive(ctx context.Context, req model.Request) (model.Payload, error) {
	v, err, _ := r.group.Do(req.CacheKey(), func() (any, error) {
		return r.live.Fetch(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(model.Payload), nil
}

// ttlFor picks the freshness-class TTL: closed seasons are immutable and
// cache long, the current season caches short to bound staleness.
func (r *Resolver) ttlFor(seasonYear int) time.Duration {
	if r.calendar.Closed(seasonYear) {
		return r.cfg.ClosedSeasonTTL
	}
	return r.cfg.CurrentSeasonTTL
}

// assemble turns historical records into a single payload. A lone
// composite record (empty natural key, written by the backup path) is
// returned as-is; otherwise the per-key payloads are joined into a JSON
// array, composite leftovers excluded.
func assemble(records []model.HistoricalRecord) (model.Payload, error) {
	if len(records) == 1 && records[0].NaturalKey == "" {
		return records[0].Payload, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	n := 0
	for _, rec := range records {
		if rec.NaturalKey == "" {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(rec.Payload)
		n++
	}
	buf.WriteByte(']')

	if !json.Valid(buf.Bytes()) {
		return nil, fmt.Errorf("assembled payload is not valid json")
	}
	return model.Payload(buf.Bytes()), nil
}

func (r *Resolver) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}
