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
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xArchiveIO/bookreplay/internal/config"
	"github.com/0xArchiveIO/bookreplay/internal/database"
	"github.com/0xArchiveIO/bookreplay/internal/model"
	"github.com/0xArchiveIO/bookreplay/internal/pipeline"
	"github.com/0xArchiveIO/bookreplay/internal/replay"
	"github.com/0xArchiveIO/bookreplay/internal/scheduler"
	"github.com/0xArchiveIO/bookreplay/internal/store"
	"github.com/0xArchiveIO/bookreplay/internal/version"
	"github.com/0xArchiveIO/bookreplay/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/replayer.local.yaml", "path to config file")
	instrument := flag.String("instrument", "", "one-shot: replay a single instrument and print snapshots")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting replayer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"depth", cfg.Replay.Depth,
		"emit_all", cfg.Replay.EmitAllOrDefault(),
	)

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

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Timescale.Host,
		"port", cfg.Database.Timescale.Port,
		"database", cfg.Database.Timescale.Name,
	)

	db, err := database.Connect(ctx, cfg.Database.Timescale)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connected")

	st := store.New(db, logger)

	if *instrument != "" {
		if err := runOneShot(ctx, st, cfg, *instrument, logger); err != nil {
			logger.Error("one-shot replay failed", "instrument", *instrument, "error", err)
			os.Exit(1)
		}
		return
	}

	runService(ctx, cfg, db, st, logger)
}

// runOneShot replays one instrument and prints snapshots as JSON lines.
func runOneShot(ctx context.Context, st *store.Store, cfg *config.ReplayerConfig, instrument string, logger *slog.Logger) error {
	cp, err := st.LatestCheckpoint(ctx, instrument)
	if err != nil {
		return err
	}
	deltas, err := st.DeltasSince(ctx, instrument, cp.TS)
	if err != nil {
		return err
	}

	if gaps := replay.DetectGaps(deltas); len(gaps) > 0 {
		logger.Warn("sequence gaps detected", "instrument", instrument, "gaps", len(gaps))
	}

	snaps, err := replay.ReconstructAll(cp, deltas, replay.Options{
		Depth:   cfg.Replay.Depth,
		EmitAll: cfg.Replay.EmitAllOrDefault(),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, snap := range snaps {
		if err := enc.Encode(snap); err != nil {
			return err
		}
	}

	logger.Info("one-shot replay complete",
		"instrument", instrument,
		"deltas", len(deltas),
		"snapshots", len(snaps),
	)
	return nil
}

// runService runs the periodic scheduler + batch writer pipeline.
func runService(ctx context.Context, cfg *config.ReplayerConfig, db *pgxpool.Pool, st *store.Store, logger *slog.Logger) {
	queue := pipeline.NewQueue[model.Snapshot](cfg.Writer.BufferSize)

	snapWriter := writer.NewSnapshotWriter(writer.Config{
		BatchSize:     cfg.Writer.BatchSize,
		FlushInterval: cfg.Writer.FlushInterval,
	}, queue, db, logger)

	sched := scheduler.New(scheduler.Config{
		Interval:    cfg.Scheduler.Interval,
		Concurrency: cfg.Scheduler.Concurrency,
		Timeout:     cfg.Scheduler.Timeout,
		Depth:       cfg.Replay.Depth,
		EmitAll:     cfg.Replay.EmitAllOrDefault(),
	}, st, scheduler.SnapshotHandlerFunc(func(s model.Snapshot) error {
		if !queue.Push(s) {
			return fmt.Errorf("snapshot queue closed")
		}
		return nil
	}), logger)

	if err := snapWriter.Start(ctx); err != nil {
		logger.Error("failed to start snapshot writer", "error", err)
		os.Exit(1)
	}
	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, db, queue, snapWriter),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("replayer running", "instance_id", cfg.Instance.ID)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	sched.Stop(shutdownCtx)
	queue.Close()
	snapWriter.Stop(shutdownCtx)
	healthServer.Shutdown(shutdownCtx)

	logger.Info("replayer stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(path string, db *pgxpool.Pool, queue *pipeline.Queue[model.Snapshot], w *writer.SnapshotWriter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["timescaledb"] = "connected"
		}

		health.Components["queue"] = queue.Stats()
		health.Components["writer"] = w.Stats()

		rw.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			rw.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(rw).Encode(health)
	})

	return mux
}
