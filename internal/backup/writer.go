package backup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hankstank/mlb-data/internal/model"
	"github.com/hankstank/mlb-data/internal/season"
)

// Store is the slice of the historical store the writer needs.
type Store interface {
	Upsert(ctx context.Context, entity model.EntityType, seasonYear int, naturalKey string, payload model.Payload) error
}

// Config holds backup writer settings.
type Config struct {
	QueueSize int           // bounded job queue capacity
	Workers   int           // concurrent upsert workers
	Timeout   time.Duration // hard per-job timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize: 256,
		Workers:   2,
		Timeout:   30 * time.Second,
	}
}

// Metrics contains runtime counters.
type Metrics struct {
	Enqueued  int64
	Completed int64
	Failed    int64
	Dropped   int64 // queue full
	Skipped   int64 // not eligible for the historical store
}

type job struct {
	entity     model.EntityType
	naturalKey string
	season     int
	payload    model.Payload
}

// Writer persists live-fetched payloads into the historical store on a
// best-effort basis. Enqueue never blocks and never reports failure to
// the caller; a missed backup is corrected by the next sync pass.
type Writer struct {
	cfg      Config
	store    Store
	calendar season.Calendar
	logger   *slog.Logger

	jobs chan job

	mu      sync.Mutex
	closed  bool
	metrics Metrics

	wg sync.WaitGroup
}

// New creates a Writer. Start must be called before Enqueue has any
// effect.
func New(cfg Config, store Store, calendar season.Calendar, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Writer{
		cfg:      cfg,
		store:    store,
		calendar: calendar,
		logger:   logger,
		jobs:     make(chan job, cfg.QueueSize),
	}
}

// Start launches the worker goroutines.
func (w *Writer) Start(ctx context.Context) error {
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.worker()
	}

	w.logger.Info("backup writer started",
		"queue_size", w.cfg.QueueSize,
		"workers", w.cfg.Workers,
		"timeout", w.cfg.Timeout,
	)
	return nil
}

// Stop drains the queue: no new jobs are accepted, queued jobs finish,
// then workers exit. ctx bounds how long the drain may take.
func (w *Writer) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("backup writer stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn("backup writer stop timed out")
		return ctx.Err()
	}
}

// Enqueue schedules a best-effort write-through of a live payload. It
// never blocks: if the queue is full the job is dropped and counted.
// Current-season payloads and unmirrored entity types are skipped, since
// the historical store only holds closed-season data.
func (w *Writer) Enqueue(entity model.EntityType, naturalKey string, seasonYear int, payload model.Payload) {
	if !entity.Mirrored() || !w.calendar.Closed(seasonYear) {
		w.logger.Debug("backup skipped",
			"entity", entity,
			"season", seasonYear,
		)
		w.countSkipped()
		return
	}

	// The send stays under the lock so Stop cannot close the channel
	// between the closed check and the send. It cannot block: the queue
	// send has a default arm.
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.metrics.Dropped++
		return
	}

	select {
	case w.jobs <- job{entity: entity, naturalKey: naturalKey, season: seasonYear, payload: payload}:
		w.metrics.Enqueued++
	default:
		w.logger.Warn("backup queue full, dropping job",
			"entity", entity,
			"season", seasonYear,
			"natural_key", naturalKey,
		)
		w.metrics.Dropped++
	}
}

// Stats returns current counters.
func (w *Writer) Stats() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// worker processes jobs until the queue is closed and drained.
func (w *Writer) worker() {
	defer w.wg.Done()

	for j := range w.jobs {
		w.process(j)
	}
}

// process runs one upsert under the hard timeout. Errors are logged and
// swallowed; the original caller has long since been answered.
func (w *Writer) process(j job) {
	// Detached from the request context: a disconnecting caller must not
	// abort a scheduled backup.
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := w.store.Upsert(ctx, j.entity, j.season, j.naturalKey, j.payload); err != nil {
		w.logger.Warn("backup write failed",
			"entity", j.entity,
			"season", j.season,
			"natural_key", j.naturalKey,
			"duration", time.Since(start),
			"err", err,
		)
		w.mu.Lock()
		w.metrics.Failed++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.metrics.Completed++
	w.mu.Unlock()

	w.logger.Debug("backup write complete",
		"entity", j.entity,
		"season", j.season,
		"natural_key", j.naturalKey,
		"duration", time.Since(start),
	)
}

func (w *Writer) countSkipped() {
	w.mu.Lock()
	w.metrics.Skipped++
	w.mu.Unlock()
}
