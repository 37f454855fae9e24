// Package scheduler runs periodic background maintenance. The only job today
// is sweeping stale sessions: active sessions whose learner walked away are
// marked abandoned after a configurable age so they stop counting as open.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lexireef/studyhall-api/internal/store"
)

// Scheduler manages the periodic session sweep.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	sessions   store.SessionStore
	staleAfter time.Duration
	interval   time.Duration
	clock      func() time.Time
	logger     *slog.Logger
}

// New creates a scheduler sweeping sessions older than staleAfter every
// interval.
func New(
	sessions store.SessionStore,
	staleAfter time.Duration,
	interval time.Duration,
	clock func() time.Time,
	logger *slog.Logger,
) *Scheduler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session store cannot be nil for Scheduler")
	}
	if staleAfter <= 0 {
		panic("staleAfter must be positive")
	}
	if interval <= 0 {
		panic("interval must be positive")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		sessions:   sessions,
		staleAfter: staleAfter,
		interval:   interval,
		clock:      clock,
		logger:     logger.With(slog.String("component", "scheduler")),
	}
}

// Start begins running the sweep in the background. It returns after the
// first job is registered; the sweep itself runs on the scheduler's
// goroutine.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(s.sweepStaleSessions)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("session sweep scheduled",
		slog.Duration("interval", s.interval),
		slog.Duration("stale_after", s.staleAfter))
	return nil
}

// Stop terminates all scheduled jobs. Safe to call before Start.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepStaleSessions marks long-inactive sessions as abandoned.
func (s *Scheduler) sweepStaleSessions() {
	cutoff := s.clock().Add(-s.staleAfter)

	n, err := s.sessions.MarkAbandonedBefore(context.Background(), cutoff)
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return
	}

	if n > 0 {
		s.logger.Info("stale sessions abandoned",
			slog.Int64("count", n),
			slog.Time("cutoff", cutoff))
	} else {
		s.logger.Debug("session sweep found nothing to do")
	}
}

// SweepNow runs one sweep synchronously, independent of the schedule.
func (s *Scheduler) SweepNow(ctx context.Context) (int64, error) {
	cutoff := s.clock().Add(-s.staleAfter)
	return s.sessions.MarkAbandonedBefore(ctx, cutoff)
}
