package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mlbdata "github.com/hankstank/mlb-data"
	"github.com/hankstank/mlb-data/internal/config"
	"github.com/hankstank/mlb-data/internal/model"
	"github.com/hankstank/mlb-data/internal/syncer"
	"github.com/hankstank/mlb-data/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/collector.local.yaml", "path to config file")
	statusOnly := flag.Bool("status", false, "print sync status and exit")
	daemon := flag.Bool("daemon", false, "run scheduled gap syncs until interrupted")
	seasonsFlag := flag.String("seasons", "", "explicit seasons to sync, e.g. 2016,2018 or 2015-2020")
	entitiesFlag := flag.String("entities", "", "comma-separated entity types to sync")
	force := flag.Bool("force", false, "re-sync seasons that already have data")
	healthPort := flag.Int("health-port", 8080, "health endpoint port in daemon mode")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts, err := parseSyncOptions(*seasonsFlag, *entitiesFlag, *force)
	if err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client, err := mlbdata.Open(ctx, cfg, mlbdata.WithLogger(logger))
	if err != nil {
		logger.Error("failed to open data core", "error", err)
		os.Exit(1)
	}

	logger.Info("data core ready",
		"instance_id", cfg.Instance.ID,
		"first_season", cfg.Seasons.First,
	)

	exitCode := 0
	switch {
	case *statusOnly:
		exitCode = runStatus(ctx, client, logger)
	case *daemon:
		runDaemon(ctx, cfg, client, *healthPort, logger)
	default:
		exitCode = runOnce(ctx, client, opts, logger)
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()
	if err := client.Close(closeCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	os.Exit(exitCode)
}

// runStatus prints per-entity coverage as JSON.
func runStatus(ctx context.Context, client *mlbdata.Client, logger *slog.Logger) int {
	statuses, err := client.SyncStatus(ctx)
	if err != nil {
		logger.Error("failed to compute sync status", "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statuses); err != nil {
		logger.Error("failed to encode status", "error", err)
		return 1
	}
	return 0
}

// runOnce runs a single backfill pass; non-zero when any season failed.
func runOnce(ctx context.Context, client *mlbdata.Client, opts syncer.Options, logger *slog.Logger) int {
	start := time.Now()
	results, err := client.SyncMissing(ctx, opts)
	if err != nil {
		logger.Error("sync aborted", "error", err)
		return 1
	}

	var synced, skipped, failed int
	for _, r := range results {
		switch {
		case r.Failed():
			failed++
			logger.Error("season failed",
				"entity", r.Entity,
				"season", r.Season,
				"err", r.Err,
			)
		case r.Skipped:
			skipped++
		default:
			synced++
			logger.Info("season synced",
				"entity", r.Entity,
				"season", r.Season,
				"records", r.RecordsAdded,
				"duration", r.Duration,
			)
		}
	}

	logger.Info("backfill complete",
		"synced", synced,
		"skipped", skipped,
		"failed", failed,
		"duration", time.Since(start),
	)

	if failed > 0 {
		return 1
	}
	return 0
}

// runDaemon runs scheduled gap syncs with a health endpoint until
// interrupted.
func runDaemon(ctx context.Context, cfg *config.Config, client *mlbdata.Client, healthPort int, logger *slog.Logger) {
	scheduler := syncer.NewScheduler(syncer.SchedulerConfig{Interval: cfg.Syncer.Interval}, client.Engine(), logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return
	}

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", healthPort),
		Handler: createHealthHandler(client, logger),
	}

	go func() {
		logger.Info("starting health server", "port", healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("collector running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", healthPort),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	healthServer.Shutdown(shutdownCtx)
	scheduler.Stop(shutdownCtx)
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(client *mlbdata.Client, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if err := client.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["historical_store"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["historical_store"] = "connected"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		statuses, err := client.SyncStatus(ctx)
		if err != nil {
			logger.Warn("status endpoint failed", "error", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		out := struct {
			Coverage []model.SyncStatus `json:"coverage"`
			Stats    mlbdata.Stats      `json:"stats"`
		}{
			Coverage: statuses,
			Stats:    client.Stats(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	return mux
}

// parseSyncOptions converts the CLI flags into engine options.
func parseSyncOptions(seasonsFlag, entitiesFlag string, force bool) (syncer.Options, error) {
	opts := syncer.Options{Force: force}

	if seasonsFlag != "" {
		seasons, err := parseSeasons(seasonsFlag)
		if err != nil {
			return opts, err
		}
		opts.Seasons = seasons
	}

	if entitiesFlag != "" {
		for _, name := range strings.Split(entitiesFlag, ",") {
			e, err := model.ParseEntityType(strings.TrimSpace(name))
			if err != nil {
				return opts, err
			}
			opts.Entities = append(opts.Entities, e)
		}
	}

	return opts, nil
}

// parseSeasons accepts "2016,2018" and "2015-2020" forms.
func parseSeasons(s string) ([]int, error) {
	var seasons []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if from, to, ok := strings.Cut(part, "-"); ok {
			lo, err := strconv.Atoi(from)
			if err != nil {
				return nil, fmt.Errorf("invalid season range %q", part)
			}
			hi, err := strconv.Atoi(to)
			if err != nil || hi < lo {
				return nil, fmt.Errorf("invalid season range %q", part)
			}
			for y := lo; y <= hi; y++ {
				seasons = append(seasons, y)
			}
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid season %q", part)
		}
		seasons = append(seasons, y)
	}
	return seasons, nil
}
