package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hankstank/mlb-data/internal/model"
	"github.com/hankstank/mlb-data/internal/season"
)

// LiveSource provides full-season payloads, normalized into rows.
type LiveSource interface {
	FetchRows(ctx context.Context, entity model.EntityType, seasonYear int) ([]model.Row, error)
}

// Store is the slice of the historical store the engine needs.
type Store interface {
	DistinctSeasons(ctx context.Context, entity model.EntityType) ([]int, error)
	Exists(ctx context.Context, entity model.EntityType, seasonYear int) (bool, error)
	ReplaceSeason(ctx context.Context, entity model.EntityType, seasonYear int, rows []model.Row) (int, error)
}

// CacheInvalidator drops cached entries made stale by a sync.
type CacheInvalidator interface {
	DeleteByPattern(glob string) int
}

// Config holds backfill settings.
type Config struct {
	FetchDelay time.Duration      // pause between consecutive live fetches
	Entities   []model.EntityType // empty means every mirrored entity
}

// Options narrows a SyncMissing run.
type Options struct {
	Seasons  []int              // explicit seasons; empty means the missing ones
	Entities []model.EntityType // subset of monitored entities; empty means all
	Force    bool               // re-sync even where data already exists
}

// Engine enumerates closed seasons, detects gaps in the historical
// store, and fills them one season at a time from the live source.
type Engine struct {
	cfg      Config
	live     LiveSource
	store    Store
	cache    CacheInvalidator
	calendar season.Calendar
	logger   *slog.Logger
}

// New creates an Engine. cache may be nil when no cache invalidation is
// wanted (e.g., one-shot CLI runs).
func New(cfg Config, live LiveSource, store Store, cache CacheInvalidator, calendar season.Calendar, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Entities) == 0 {
		cfg.Entities = model.MirroredEntityTypes()
	}
	return &Engine{
		cfg:      cfg,
		live:     live,
		store:    store,
		cache:    cache,
		calendar: calendar,
		logger:   logger,
	}
}

// Status computes coverage per monitored entity type by diffing observed
// seasons against the expected closed range.
func (e *Engine) Status(ctx context.Context) ([]model.SyncStatus, error) {
	expected := e.calendar.Expected()

	statuses := make([]model.SyncStatus, 0, len(e.cfg.Entities))
	for _, entity := range e.cfg.Entities {
		observed, err := e.store.DistinctSeasons(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("sync status for %s: %w", entity, err)
		}

		covered := make(map[int]bool, len(observed))
		for _, s := range observed {
			covered[s] = true
		}

		var missing []int
		for _, s := range expected {
			if !covered[s] {
				missing = append(missing, s)
			}
		}

		statuses = append(statuses, model.SyncStatus{
			Entity:         entity,
			SeasonsCovered: observed,
			MissingSeasons: missing,
			Complete:       len(missing) == 0,
		})
	}
	return statuses, nil
}

// SyncMissing fills historical gaps. Per entity it targets the missing
// seasons, or the explicitly requested ones, or every closed season when
// forced. One failed season is recorded in its result and does not abort
// the rest of the batch.
func (e *Engine) SyncMissing(ctx context.Context, opts Options) ([]model.SyncResult, error) {
	entities := opts.Entities
	if len(entities) == 0 {
		entities = e.cfg.Entities
	}

	var results []model.SyncResult
	first := true
	for _, entity := range entities {
		seasons, err := e.targetSeasons(ctx, entity, opts)
		if err != nil {
			return results, err
		}

		for _, s := range seasons {
			// Rate-limit consecutive external fetches.
			if !first {
				select {
				case <-ctx.Done():
					return results, ctx.Err()
				case <-time.After(e.cfg.FetchDelay):
				}
			}
			first = false

			results = append(results, e.SyncOne(ctx, entity, s, opts.Force))
		}
	}
	return results, nil
}

// targetSeasons decides which seasons to fill for one entity. Seasons at
// or past the current one are hard-skipped even when explicitly
// requested: current-season data is still mutable upstream.
func (e *Engine) targetSeasons(ctx context.Context, entity model.EntityType, opts Options) ([]int, error) {
	if len(opts.Seasons) > 0 {
		var seasons []int
		for _, s := range opts.Seasons {
			if !e.calendar.Closed(s) {
				e.logger.Warn("skipping season outside closed range",
					"entity", entity,
					"season", s,
					"current", e.calendar.Current(),
				)
				continue
			}
			seasons = append(seasons, s)
		}
		return seasons, nil
	}

	if opts.Force {
		return e.calendar.Expected(), nil
	}

	statuses, err := e.statusFor(ctx, entity)
	if err != nil {
		return nil, err
	}
	return statuses.MissingSeasons, nil
}

func (e *Engine) statusFor(ctx context.Context, entity model.EntityType) (model.SyncStatus, error) {
	observed, err := e.store.DistinctSeasons(ctx, entity)
	if err != nil {
		return model.SyncStatus{}, fmt.Errorf("sync status for %s: %w", entity, err)
	}

	covered := make(map[int]bool, len(observed))
	for _, s := range observed {
		covered[s] = true
	}

	status := model.SyncStatus{Entity: entity, SeasonsCovered: observed}
	for _, s := range e.calendar.Expected() {
		if !covered[s] {
			status.MissingSeasons = append(status.MissingSeasons, s)
		}
	}
	status.Complete = len(status.MissingSeasons) == 0
	return status, nil
}

// SyncOne backfills a single (entity, season). Without force it no-ops
// when data already exists, so repeated runs perform the external fetch
// and insert exactly once.
func (e *Engine) SyncOne(ctx context.Context, entity model.EntityType, seasonYear int, force bool) model.SyncResult {
	result := model.SyncResult{
		RunID:  uuid.New(),
		Entity: entity,
		Season: seasonYear,
	}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	if !e.calendar.Closed(seasonYear) {
		result.Skipped = true
		e.logger.Warn("refusing to sync season outside closed range",
			"entity", entity,
			"season", seasonYear,
			"current", e.calendar.Current(),
		)
		return result
	}

	if !force {
		exists, err := e.store.Exists(ctx, entity, seasonYear)
		if err != nil {
			result.Err = err
			return result
		}
		if exists {
			result.Skipped = true
			e.logger.Debug("season already synced",
				"entity", entity,
				"season", seasonYear,
			)
			return result
		}
	}

	e.logger.Info("syncing season",
		"run_id", result.RunID,
		"entity", entity,
		"season", seasonYear,
		"force", force,
	)

	rows, err := e.live.FetchRows(ctx, entity, seasonYear)
	if err != nil {
		result.Err = fmt.Errorf("fetch %s season %d: %w", entity, seasonYear, err)
		e.logger.Error("season sync failed",
			"run_id", result.RunID,
			"entity", entity,
			"season", seasonYear,
			"err", result.Err,
		)
		return result
	}

	inserted, err := e.store.ReplaceSeason(ctx, entity, seasonYear, rows)
	if err != nil {
		result.Err = fmt.Errorf("store %s season %d: %w", entity, seasonYear, err)
		e.logger.Error("season sync failed",
			"run_id", result.RunID,
			"entity", entity,
			"season", seasonYear,
			"err", result.Err,
		)
		return result
	}
	result.RecordsAdded = inserted

	if e.cache != nil {
		removed := e.cache.DeleteByPattern(fmt.Sprintf("%s:%d:*", entity, seasonYear))
		if removed > 0 {
			e.logger.Debug("invalidated cache entries",
				"entity", entity,
				"season", seasonYear,
				"removed", removed,
			)
		}
	}

	e.logger.Info("season sync complete",
		"run_id", result.RunID,
		"entity", entity,
		"season", seasonYear,
		"records", inserted,
		"duration", time.Since(start),
	)
	return result
}
