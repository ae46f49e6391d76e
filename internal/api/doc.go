// Package api provides the live-source client for the MLB StatsAPI.
//
// The client exposes two granularities:
//   - Fetch resolves a single Request into an opaque payload (resolver path)
//   - FetchRows normalizes a whole season into keyed rows (sync/backfill path)
//
// Payloads are passed through as raw JSON; the client only extracts the
// natural keys needed to address records.
package api
