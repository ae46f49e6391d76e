package backup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hankstank/mlb-data/internal/model"
	"github.com/hankstank/mlb-data/internal/season"
)

type upsertCall struct {
	entity     model.EntityType
	season     int
	naturalKey string
}

// fakeStore records upserts and can be made slow or failing.
type fakeStore struct {
	mu    sync.Mutex
	calls []upsertCall
	delay time.Duration
	err   error
}

func (f *fakeStore) Upsert(ctx context.Context, entity model.EntityType, seasonYear int, naturalKey string, payload model.Payload) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.calls = append(f.calls, upsertCall{entity: entity, season: seasonYear, naturalKey: naturalKey})
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testCalendar() season.Calendar {
	return season.Calendar{
		First:    2015,
		Rollover: time.January,
		Now: func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEnqueueWritesThrough(t *testing.T) {
	store := &fakeStore{}
	w := New(DefaultConfig(), store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop(context.Background())

	w.Enqueue(model.EntityTeamStats, "119-hitting", 2023, model.Payload(`{}`))

	waitFor(t, func() bool { return store.callCount() == 1 })

	store.mu.Lock()
	call := store.calls[0]
	store.mu.Unlock()
	if call.entity != model.EntityTeamStats || call.season != 2023 || call.naturalKey != "119-hitting" {
		t.Errorf("unexpected upsert call: %+v", call)
	}
}

func TestEnqueueNeverBlocks(t *testing.T) {
	store := &fakeStore{delay: time.Hour}
	cfg := Config{QueueSize: 1, Workers: 1, Timeout: time.Hour}
	w := New(cfg, store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Fill worker and queue, then keep enqueueing.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			w.Enqueue(model.EntityTeamStats, "119", 2023, model.Payload(`{}`))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked")
	}

	stats := w.Stats()
	if stats.Dropped == 0 {
		t.Error("expected drops once the queue filled")
	}
}

func TestEnqueueSkipsCurrentSeason(t *testing.T) {
	store := &fakeStore{}
	w := New(DefaultConfig(), store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	w.Enqueue(model.EntityTeamStats, "", 2025, model.Payload(`{}`)) // current
	w.Enqueue(model.EntityTeamStats, "", 2026, model.Payload(`{}`)) // future
	w.Enqueue(model.EntityTeamStats, "", 2014, model.Payload(`{}`)) // before first

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if store.callCount() != 0 {
		t.Errorf("upserts = %d, want 0: the historical store holds closed seasons only", store.callCount())
	}
	if got := w.Stats().Skipped; got != 3 {
		t.Errorf("Skipped = %d, want 3", got)
	}
}

func TestEnqueueSkipsUnmirrored(t *testing.T) {
	store := &fakeStore{}
	w := New(DefaultConfig(), store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	w.Enqueue(model.EntityRoster, "119", 2023, model.Payload(`{}`))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Stop(stopCtx)

	if store.callCount() != 0 {
		t.Errorf("upserts = %d, want 0 for unmirrored entity", store.callCount())
	}
}

func TestErrorsAreSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	w := New(DefaultConfig(), store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	w.Enqueue(model.EntityStandings, "121", 2022, model.Payload(`{}`))

	waitFor(t, func() bool { return w.Stats().Failed == 1 })

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestJobTimeout(t *testing.T) {
	store := &fakeStore{delay: time.Hour}
	cfg := Config{QueueSize: 4, Workers: 1, Timeout: 20 * time.Millisecond}
	w := New(cfg, store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	w.Enqueue(model.EntityTeams, "119", 2023, model.Payload(`{}`))

	waitFor(t, func() bool { return w.Stats().Failed == 1 })
}

func TestStopDrainsQueue(t *testing.T) {
	store := &fakeStore{}
	cfg := Config{QueueSize: 16, Workers: 1, Timeout: time.Second}
	w := New(cfg, store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		w.Enqueue(model.EntityTeams, "119", 2023, model.Payload(`{}`))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if store.callCount() != 5 {
		t.Errorf("upserts = %d, want 5: Stop must drain queued jobs", store.callCount())
	}
}

func TestEnqueueAfterStopIsDropped(t *testing.T) {
	store := &fakeStore{}
	w := New(DefaultConfig(), store, testCalendar(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	w.Enqueue(model.EntityTeams, "119", 2023, model.Payload(`{}`))

	if store.callCount() != 0 {
		t.Error("no upsert expected after Stop")
	}
	if w.Stats().Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", w.Stats().Dropped)
	}
}
