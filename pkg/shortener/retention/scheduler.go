package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule prunes at the top of every hour.
const DefaultSchedule = "0 * * * *"

// Pruner removes expired links.
type Pruner interface {
	PruneExpired(ctx context.Context) (int, error)
}

// Config configures a Scheduler.
type Config struct {
	// Schedule is a standard five-field cron expression.
	// Empty disables scheduling.
	Schedule string

	// RetentionDays is only reported in logs.
	RetentionDays int
}

// Scheduler runs the pruner on a cron schedule.
// Overlapping runs are skipped rather than queued.
type Scheduler struct {
	pruner  Pruner
	config  Config
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a retention scheduler for pruner.
func NewScheduler(pruner Pruner, cfg Config) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		config: cfg,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: slog.Default().With("component", "shortener.retention"),
	}
}

// Start schedules pruning and returns immediately. The scheduler stops
// when ctx is cancelled or Stop is called.
//
// Common cron expressions:
//   - "0 * * * *"    - Hourly
//   - "0 3 * * *"    - Daily at 3 AM
//   - "*/15 * * * *" - Every 15 minutes
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.config.Schedule,
		"retention_days", s.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce executes a single pruning cycle and returns the number of links
// removed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	start := time.Now()

	deleted, err := s.pruner.PruneExpired(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return 0
	}

	if deleted > 0 {
		s.logger.Info("scheduled pruning completed",
			"deleted_count", deleted,
			"duration", time.Since(start),
		)
	} else {
		s.logger.Debug("scheduled pruning completed, nothing expired")
	}
	return deleted
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
