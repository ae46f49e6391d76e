package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hankstank/mlb-data/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, WithTimeout(5*time.Second), WithRetries(2, 10*time.Millisecond))
}

func TestGetTeams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams" {
			t.Errorf("path = %q, want /teams", r.URL.Path)
		}
		if got := r.URL.Query().Get("season"); got != "2023" {
			t.Errorf("season = %q, want 2023", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"teams":[{"id":119,"name":"Los Angeles Dodgers"},{"id":143,"name":"Philadelphia Phillies"}]}`))
	})

	rows, err := client.GetTeams(context.Background(), 2023)
	if err != nil {
		t.Fatalf("GetTeams failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].NaturalKey != "119" {
		t.Errorf("rows[0].NaturalKey = %q, want 119", rows[0].NaturalKey)
	}
	if !json.Valid(rows[0].Payload) {
		t.Error("payload should be valid json")
	}
}

func TestGetTeamStatsKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats":[{"splits":[{"team":{"id":119},"stat":{"runs":700}}]}]}`))
	})

	rows, err := client.GetTeamStats(context.Background(), 2023)
	if err != nil {
		t.Fatalf("GetTeamStats failed: %v", err)
	}
	// One split per group request: hitting then pitching.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].NaturalKey != "119-hitting" {
		t.Errorf("rows[0].NaturalKey = %q, want 119-hitting", rows[0].NaturalKey)
	}
	if rows[1].NaturalKey != "119-pitching" {
		t.Errorf("rows[1].NaturalKey = %q, want 119-pitching", rows[1].NaturalKey)
	}
}

func TestGetSchedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dates":[{"games":[{"gamePk":717465},{"gamePk":717466}]},{"games":[{"gamePk":717467}]}]}`))
	})

	rows, err := client.GetSchedule(context.Background(), 2023)
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[2].NaturalKey != "717467" {
		t.Errorf("rows[2].NaturalKey = %q, want 717467", rows[2].NaturalKey)
	}
}

func TestGetStandings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[{"teamRecords":[{"team":{"id":121},"wins":101}]},{"teamRecords":[{"team":{"id":147},"wins":82}]}]}`))
	})

	rows, err := client.GetStandings(context.Background(), 2022)
	if err != nil {
		t.Fatalf("GetStandings failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].NaturalKey != "121" || rows[1].NaturalKey != "147" {
		t.Errorf("keys = %q, %q; want 121, 147", rows[0].NaturalKey, rows[1].NaturalKey)
	}
}

func TestFetchListPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"teams":[{"id":119},{"id":143}]}`))
	})

	payload, err := client.Fetch(context.Background(), model.Request{Entity: model.EntityTeams, Season: 2023})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(payload, &records); err != nil {
		t.Fatalf("payload is not a json array: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestFetchFiltersByNaturalKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats":[{"splits":[{"team":{"id":119},"stat":{}},{"team":{"id":143},"stat":{}}]}]}`))
	})

	payload, err := client.Fetch(context.Background(), model.Request{
		Entity:     model.EntityTeamStats,
		Season:     2023,
		NaturalKey: "119",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		t.Fatalf("payload is not a json array: %v", err)
	}
	// Team 119 appears once per group.
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestFetchRoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams/119/roster" {
			t.Errorf("path = %q, want /teams/119/roster", r.URL.Path)
		}
		w.Write([]byte(`{"roster":[{"person":{"id":660271}}]}`))
	})

	payload, err := client.Fetch(context.Background(), model.Request{
		Entity:     model.EntityRoster,
		Season:     2024,
		NaturalKey: "119",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !json.Valid(payload) {
		t.Error("payload should be valid json")
	}
}

func TestFetchRosterRequiresTeamID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made")
	})

	_, err := client.Fetch(context.Background(), model.Request{Entity: model.EntityRoster, Season: 2024})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchEmptySeasonIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"teams":[]}`))
	})

	_, err := client.Fetch(context.Background(), model.Request{Entity: model.EntityTeams, Season: 1999})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNotFoundMapsToModelError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.GetTeams(context.Background(), 2023)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Error("404 must not look like upstream unavailability")
	}
}

func TestServerErrorMapsToUpstreamUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.GetTeams(context.Background(), 2023)
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"teams":[{"id":119}]}`))
	})

	rows, err := client.GetTeams(context.Background(), 2023)
	if err != nil {
		t.Fatalf("GetTeams failed after retries: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.GetTeams(context.Background(), 2023)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", calls.Load())
	}
}
