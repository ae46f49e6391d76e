// Package syncer implements the historical backfill engine:
//   - Gap detection by diffing observed seasons against the closed range
//   - Sequential, rate-limited fetch → normalize → replace per season
//   - Per-season results aggregated instead of aborting the batch
//
// A Scheduler wraps the engine for periodic gap syncs in daemon mode.
package syncer
