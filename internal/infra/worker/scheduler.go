package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is one run of a scheduled job.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules. A run that is still going when
// the next tick arrives makes that tick a no-op, and a panicking job is
// recovered and counted as a failure.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *Metrics
	running atomic.Bool
}

// NewScheduler creates a stopped scheduler evaluating schedules in loc.
// A nil loc means UTC.
func NewScheduler(logger *slog.Logger, loc *time.Location, m *Metrics) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	if m == nil {
		m = defaultMetrics
	}
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		metrics: m,
	}
}

// Add registers fn under name to run on spec, each run bounded by timeout.
// spec uses the standard five fields or a descriptor such as "@every 1m".
func (s *Scheduler) Add(name, spec string, timeout time.Duration, fn JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = s.Run(ctx, name, fn)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// Run executes fn once under name, recording its outcome.
func (s *Scheduler) Run(ctx context.Context, name string, fn JobFunc) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}
		elapsed := time.Since(start)
		s.metrics.RecordJobRun(name, elapsed.Seconds(), err)
		if err != nil {
			s.logger.Error("job failed",
				slog.String("job", name),
				slog.Duration("duration", elapsed),
				slog.Any("error", err))
			return
		}
		s.logger.Debug("job completed",
			slog.String("job", name),
			slog.Duration("duration", elapsed))
	}()
	return fn(ctx)
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.running.Store(true)
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.running.Store(false)
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether Start has been called without a later Stop.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
