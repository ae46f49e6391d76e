// Package store is the historical-store client: a PostgreSQL-backed
// archive of closed-season data, one table per mirrored entity type.
// Rows are keyed (season, natural_key) with a JSONB payload; season
// replacement runs in a single transaction so readers never observe a
// half-replaced season.
package store
