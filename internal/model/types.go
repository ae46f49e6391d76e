package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payload is an opaque JSON document returned to callers. The core never
// interprets it beyond the normalization done at the live-source boundary.
type Payload = json.RawMessage

// Request describes a single data lookup.
type Request struct {
	Entity     EntityType        // dataset to resolve
	Season     int               // season year (e.g., 2023)
	NaturalKey string            // team/player id; empty for season-wide queries
	Filters    map[string]string // optional refinements, part of the cache key
}

// Validate rejects malformed requests before any store is touched.
func (r Request) Validate() error {
	if !r.Entity.Valid() {
		return fmt.Errorf("unknown entity type %q", r.Entity)
	}
	if r.Season < 1900 || r.Season > 3000 {
		return fmt.Errorf("implausible season %d", r.Season)
	}
	return nil
}

// CacheKey derives the deterministic cache key for this request.
// Filters are sorted so equivalent requests share an entry.
func (r Request) CacheKey() string {
	var b strings.Builder
	b.WriteString(string(r.Entity))
	fmt.Fprintf(&b, ":%d", r.Season)
	b.WriteByte(':')
	b.WriteString(r.NaturalKey)

	if len(r.Filters) > 0 {
		keys := make([]string, 0, len(r.Filters))
		for k := range r.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ":%s=%s", k, r.Filters[k])
		}
	}
	return b.String()
}

// Row is a normalized record produced from a live-source payload, ready
// for insertion into the historical store. NaturalKey is empty for
// composite (whole-season) records.
type Row struct {
	NaturalKey string
	Payload    Payload
}

// HistoricalRecord is a persisted row from the historical store.
type HistoricalRecord struct {
	Entity        EntityType
	Season        int
	NaturalKey    string
	Payload       Payload
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// SyncStatus reports historical coverage for one entity type. It is
// derived by diffing observed seasons against the expected closed range,
// never stored.
type SyncStatus struct {
	Entity         EntityType `json:"entity"`
	SeasonsCovered []int      `json:"seasons_covered"`
	MissingSeasons []int      `json:"missing_seasons"`
	Complete       bool       `json:"complete"`
}

// SyncResult records the outcome of one (entity, season) sync step.
type SyncResult struct {
	RunID        uuid.UUID     `json:"run_id"`
	Entity       EntityType    `json:"entity"`
	Season       int           `json:"season"`
	RecordsAdded int           `json:"records_added"`
	Skipped      bool          `json:"skipped"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// Failed reports whether the step ended in error.
func (r SyncResult) Failed() bool {
	return r.Err != nil
}
