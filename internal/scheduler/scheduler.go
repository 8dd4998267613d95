package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/0xArchiveIO/bookreplay/internal/model"
	"github.com/0xArchiveIO/bookreplay/internal/replay"
)

// Source supplies recorded checkpoints and deltas to replay.
type Source interface {
	ListInstruments(ctx context.Context) ([]string, error)
	LatestCheckpoint(ctx context.Context, instrument string) (model.Checkpoint, error)
	DeltasSince(ctx context.Context, instrument string, sinceTS int64) ([]model.Delta, error)
}

// SnapshotHandler receives reconstructed snapshots.
type SnapshotHandler interface {
	HandleSnapshot(snapshot model.Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(model.Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(s model.Snapshot) error {
	return f(s)
}

// Config holds scheduler configuration.
type Config struct {
	Interval    time.Duration // cycle interval
	Concurrency int           // max concurrent replay jobs
	Timeout     time.Duration // per-job timeout
	Depth       int           // snapshot depth, 0 = all levels
	EmitAll     bool          // emit every intermediate snapshot
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    15 * time.Minute,
		Concurrency: 8,
		Timeout:     2 * time.Minute,
		Depth:       0,
		EmitAll:     true,
	}
}

// Scheduler periodically reconstructs books for every recorded instrument.
type Scheduler struct {
	cfg     Config
	source  Source
	handler SnapshotHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler.
func New(cfg Config, source Source, handler SnapshotHandler, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the replay loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("replay scheduler started",
		"interval", s.cfg.Interval,
		"concurrency", s.cfg.Concurrency,
	)
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
		s.logger.Info("replay scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main cycle loop. The first cycle starts immediately.
func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.replayAll()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.replayAll()
		}
	}
}

// replayAll reconstructs every recorded instrument concurrently.
func (s *Scheduler) replayAll() {
	start := time.Now()

	instruments, err := s.source.ListInstruments(s.ctx)
	if err != nil {
		s.logger.Error("failed to list instruments", "err", err)
		return
	}
	if len(instruments) == 0 {
		s.logger.Debug("no instruments to replay")
		return
	}

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	var replayed, errors atomic.Int64

	for _, instrument := range instruments {
		wg.Add(1)
		go func(instrument string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-s.ctx.Done():
				return
			}

			if err := s.replayInstrument(instrument); err != nil {
				s.logger.Warn("replay job failed",
					"instrument", instrument,
					"err", err,
				)
				errors.Add(1)
				return
			}
			replayed.Add(1)
		}(instrument)
	}

	wg.Wait()

	s.logger.Info("replay cycle complete",
		"instruments", len(instruments),
		"replayed", replayed.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

// replayInstrument reconstructs one instrument's book and streams snapshots
// to the handler.
func (s *Scheduler) replayInstrument(instrument string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()

	jobID := uuid.New()

	cp, err := s.source.LatestCheckpoint(ctx, instrument)
	if err != nil {
		return err
	}
	deltas, err := s.source.DeltasSince(ctx, instrument, cp.TS)
	if err != nil {
		return err
	}

	if gaps := replay.DetectGaps(deltas); len(gaps) > 0 {
		s.logger.Warn("sequence gaps detected",
			"job_id", jobID,
			"instrument", instrument,
			"gaps", len(gaps),
			"first_expected", gaps[0].Expected,
			"first_actual", gaps[0].Actual,
		)
	}

	if !s.cfg.EmitAll {
		snap, err := replay.ReconstructFinal(cp, deltas, s.cfg.Depth)
		if err != nil {
			return err
		}
		return s.handler.HandleSnapshot(snap)
	}

	// Lazy mode: one snapshot in flight at a time, stop early on shutdown.
	cur, err := replay.Iterate(cp, deltas, replay.Options{Depth: s.cfg.Depth})
	if err != nil {
		return err
	}
	emitted := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		snap, ok := cur.Next()
		if !ok {
			break
		}
		if err := s.handler.HandleSnapshot(snap); err != nil {
			return err
		}
		emitted++
	}
	if err := cur.Err(); err != nil {
		return err
	}

	s.logger.Debug("replay job complete",
		"job_id", jobID,
		"instrument", instrument,
		"deltas", len(deltas),
		"snapshots", emitted,
	)
	return nil
}
