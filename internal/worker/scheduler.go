package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned by a trigger that finds a run already in flight
var ErrRunInProgress = errors.New("discovery run already in progress")

// RunFunc executes one discovery run
type RunFunc func(ctx context.Context) error

// Scheduler fires one discovery run per day and guarantees that at most
// one run is in flight, whatever triggered it. A trigger that fires during
// a run is skipped, not queued.
type Scheduler struct {
	run      RunFunc
	spec     string
	location *time.Location
	cron     *cron.Cron
	logger   *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a daily scheduler firing at hour:minute in timezone.
// An unknown timezone falls back to UTC with a warning.
func NewScheduler(run RunFunc, hour, minute int, timezone string, logger *slog.Logger) (*Scheduler, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid daily run time %02d:%02d", hour, minute)
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("Invalid timezone, using UTC", "timezone", timezone, "error", err)
		location = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		run:      run,
		spec:     fmt.Sprintf("%d %d * * *", minute, hour),
		location: location,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.cron = cron.New(
		cron.WithLocation(location),
		cron.WithLogger(&cronLoggerAdapter{logger: logger}),
	)
	if _, err := s.cron.AddFunc(s.spec, s.fire); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to register daily run: %w", err)
	}

	return s, nil
}

// Start starts the cron loop (non-blocking)
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "schedule", s.spec, "timezone", s.location.String(), "next_run", s.Next())
}

// Stop stops the cron loop, cancels an in-flight run and waits for it
// to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown timed out: %w", ctx.Err())
	}
}

// Next returns the next scheduled run time
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now().In(s.location))
}

// Running reports whether a run is in flight
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Trigger runs discovery synchronously. It returns ErrRunInProgress when
// another run is in flight, and the run's own error otherwise. Panics
// inside the run are recovered and returned as errors.
func (s *Scheduler) Trigger(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping discovery run, previous run still in progress")
		return ErrRunInProgress
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer s.running.Store(false)

	return s.execute(ctx)
}

// TriggerAsync starts a run in the background bound to the scheduler's
// lifetime. It returns ErrRunInProgress when a run is already in flight.
func (s *Scheduler) TriggerAsync() error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping discovery run, previous run still in progress")
		return ErrRunInProgress
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		_ = s.execute(s.ctx)
	}()
	return nil
}

func (s *Scheduler) fire() {
	// skips are already logged
	_ = s.Trigger(s.ctx)
}

func (s *Scheduler) execute(ctx context.Context) (err error) {
	start := time.Now()
	s.logger.Info("Discovery run started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("discovery run panicked: %v", r)
		}
		if err != nil {
			s.logger.Error("Discovery run failed", "error", err, "elapsed", time.Since(start))
			return
		}
		s.logger.Info("Discovery run finished", "elapsed", time.Since(start))
	}()

	return s.run(ctx)
}

// cronLoggerAdapter wraps slog.Logger to implement cron.Logger
type cronLoggerAdapter struct {
	logger *slog.Logger
}

func (c *cronLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug("cron: "+msg, keysAndValues...)
}

func (c *cronLoggerAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
