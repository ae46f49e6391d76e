package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hankstank/mlb-data/internal/model"
)

// Store wraps the historical-store pool with record-level operations.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store over an existing pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.db.Close()
}

// Ping verifies the connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping historical store: %w: %w", model.ErrHistoricalUnavailable, err)
	}
	return nil
}

// tableFor maps a mirrored entity type to its table. Table names match
// the legacy archive so existing data keeps working.
func tableFor(entity model.EntityType) (string, error) {
	switch entity {
	case model.EntityTeams:
		return "teams_historical", nil
	case model.EntityTeamStats:
		return "team_stats_historical", nil
	case model.EntityStandings:
		return "standings_historical", nil
	case model.EntitySchedule:
		return "games_historical", nil
	case model.EntityPlayerStats:
		return "player_stats_historical", nil
	default:
		return "", fmt.Errorf("entity type %q is not mirrored: %w", entity, model.ErrHistoricalUnavailable)
	}
}

// Query returns records for (entity, season), optionally narrowed to a
// natural key. A key matches exactly or as the id prefix of a compound
// "<id>-<group>" key.
func (s *Store) Query(ctx context.Context, entity model.EntityType, season int, naturalKey string) ([]model.HistoricalRecord, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	if naturalKey == "" {
		rows, err = s.db.Query(ctx, fmt.Sprintf(`
			SELECT natural_key, payload, created_at, last_updated_at
			FROM %s WHERE season = $1
			ORDER BY natural_key
		`, table), season)
	} else {
		rows, err = s.db.Query(ctx, fmt.Sprintf(`
			SELECT natural_key, payload, created_at, last_updated_at
			FROM %s WHERE season = $1 AND (natural_key = $2 OR natural_key LIKE $2 || '-%%')
			ORDER BY natural_key
		`, table), season, naturalKey)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}
	defer rows.Close()

	var records []model.HistoricalRecord
	for rows.Next() {
		rec := model.HistoricalRecord{Entity: entity, Season: season}
		if err := rows.Scan(&rec.NaturalKey, &rec.Payload, &rec.CreatedAt, &rec.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}

	return records, nil
}

// Exists reports whether any record exists for (entity, season).
func (s *Store) Exists(ctx context.Context, entity model.EntityType, season int) (bool, error) {
	table, err := tableFor(entity)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE season = $1)
	`, table), season).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}
	return exists, nil
}

// DistinctSeasons returns every season observed for an entity type, in
// ascending order. This is the observed side of gap detection.
func (s *Store) DistinctSeasons(ctx context.Context, entity model.EntityType) ([]int, error) {
	table, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT DISTINCT season FROM %s ORDER BY season
	`, table))
	if err != nil {
		return nil, fmt.Errorf("distinct seasons %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan season: %w: %w", model.ErrHistoricalUnavailable, err)
		}
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w: %w", model.ErrHistoricalUnavailable, err)
	}
	return seasons, nil
}

// Upsert inserts or updates a single record. created_at is preserved on
// conflict; last_updated_at always moves forward.
func (s *Store) Upsert(ctx context.Context, entity model.EntityType, season int, naturalKey string, payload model.Payload) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (season, natural_key, payload, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (season, natural_key)
		DO UPDATE SET payload = EXCLUDED.payload, last_updated_at = EXCLUDED.last_updated_at
	`, table), season, naturalKey, payload, now)
	if err != nil {
		return fmt.Errorf("upsert %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}
	return nil
}

// ReplaceSeason atomically replaces every record for (entity, season)
// with the given rows. Delete and insert share one transaction, so a
// concurrent reader sees either the old season or the new one, never an
// empty gap.
func (s *Store) ReplaceSeason(ctx context.Context, entity model.EntityType, season int, rows []model.Row) (int, error) {
	table, err := tableFor(entity)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin replace %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE season = $1`, table), season); err != nil {
		return 0, fmt.Errorf("delete season %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(fmt.Sprintf(`
			INSERT INTO %s (season, natural_key, payload, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (season, natural_key) DO NOTHING
		`, table), season, r.NaturalKey, r.Payload, now)
	}

	inserted := 0
	results := tx.SendBatch(ctx, batch)
	for range rows {
		ct, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("insert season %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
		}
		inserted += int(ct.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}

	return inserted, nil
}

// DeleteWhere removes every record for (entity, season) and returns the
// count. Used only as part of explicit maintenance, never by the
// resolver path.
func (s *Store) DeleteWhere(ctx context.Context, entity model.EntityType, season int) (int64, error) {
	table, err := tableFor(entity)
	if err != nil {
		return 0, err
	}

	ct, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE season = $1`, table), season)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w: %w", table, model.ErrHistoricalUnavailable, err)
	}
	return ct.RowsAffected(), nil
}
