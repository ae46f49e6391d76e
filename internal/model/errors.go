package model

import "errors"

// Error kinds surfaced by the resolver. Components wrap these with %w so
// callers can branch with errors.Is regardless of which store produced
// the failure. Backup failures are logged only and never surface here.
var (
	// ErrNotFound means every consulted source answered authoritatively
	// that the requested data does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable means the live source could not be reached
	// (or kept failing past retries) and no fallback could serve.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrHistoricalUnavailable means the historical store could not serve
	// a query. The resolver recovers from this locally when live data can
	// substitute.
	ErrHistoricalUnavailable = errors.New("historical store unavailable")
)
