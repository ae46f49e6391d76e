package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SchedulerConfig holds scheduled gap-sync settings.
type SchedulerConfig struct {
	Interval time.Duration // cadence between gap-sync passes
}

// Scheduler runs periodic gap syncs so a season that closes at rollover
// gets picked up without operator action.
type Scheduler struct {
	cfg    SchedulerConfig
	engine *Engine
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler around an Engine.
func NewScheduler(cfg SchedulerConfig, engine *Engine, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}
}

// Start begins the sync loop. A pass runs immediately on start.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("sync scheduler started", "interval", s.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main scheduling loop.
func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Sync immediately on start.
	s.pass()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.pass()
		}
	}
}

// pass runs one gap sync and logs a summary.
func (s *Scheduler) pass() {
	start := time.Now()

	results, err := s.engine.SyncMissing(s.ctx, Options{})
	if err != nil {
		s.logger.Error("scheduled sync pass aborted", "err", err)
		return
	}

	var synced, skipped, failed int
	for _, r := range results {
		switch {
		case r.Failed():
			failed++
		case r.Skipped:
			skipped++
		default:
			synced++
		}
	}

	s.logger.Info("scheduled sync pass complete",
		"synced", synced,
		"skipped", skipped,
		"failed", failed,
		"duration", time.Since(start),
	)
}
