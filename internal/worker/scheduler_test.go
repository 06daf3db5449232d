package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer written from several goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func TestOverlappingTriggersAreSkipped(t *testing.T) {
	logger, buf := captureLogger()
	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0

	sched, err := NewScheduler(func(ctx context.Context) error {
		runs++
		close(started)
		<-release
		return nil
	}, 7, 0, "Europe/Madrid", logger)
	require.NoError(t, err)

	require.NoError(t, sched.TriggerAsync())
	<-started
	assert.True(t, sched.Running())

	assert.ErrorIs(t, sched.Trigger(context.Background()), ErrRunInProgress)
	assert.ErrorIs(t, sched.TriggerAsync(), ErrRunInProgress)

	close(release)
	require.Eventually(t, func() bool { return !sched.Running() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, strings.Count(buf.String(), "Discovery run started"))
	assert.Equal(t, 2, strings.Count(buf.String(), "Skipping discovery run"))
}

func TestTriggerRecoversPanic(t *testing.T) {
	logger, buf := captureLogger()
	calls := 0
	sched, err := NewScheduler(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			panic("nil map write")
		}
		return nil
	}, 7, 0, "UTC", logger)
	require.NoError(t, err)

	err = sched.Trigger(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.False(t, sched.Running())
	assert.Contains(t, buf.String(), "Discovery run failed")

	// the scheduler survives and runs again
	require.NoError(t, sched.Trigger(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestTriggerReturnsRunError(t *testing.T) {
	logger, _ := captureLogger()
	boom := errors.New("database unavailable")
	sched, err := NewScheduler(func(ctx context.Context) error { return boom }, 7, 0, "UTC", logger)
	require.NoError(t, err)

	assert.ErrorIs(t, sched.Trigger(context.Background()), boom)
}

func TestNewSchedulerTimezone(t *testing.T) {
	logger, buf := captureLogger()
	noop := func(ctx context.Context) error { return nil }

	sched, err := NewScheduler(noop, 7, 30, "Mars/Olympus_Mons", logger)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, sched.location)
	assert.Contains(t, buf.String(), "Invalid timezone")
	assert.Equal(t, "30 7 * * *", sched.spec)

	next := sched.Next()
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 30, next.Minute())

	_, err = NewScheduler(noop, 24, 0, "UTC", logger)
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	logger, _ := captureLogger()
	sched, err := NewScheduler(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 7, 0, "UTC", logger)
	require.NoError(t, err)

	sched.Start()
	require.NoError(t, sched.TriggerAsync())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sched.Stop(ctx))
	assert.False(t, sched.Running())
}

func TestHandleRunDiscoverySkipsRetryWhenBusy(t *testing.T) {
	logger, _ := captureLogger()
	release := make(chan struct{})
	started := make(chan struct{})
	sched, err := NewScheduler(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, 7, 0, "UTC", logger)
	require.NoError(t, err)

	handler := handleRunDiscovery(logger, sched)

	require.NoError(t, sched.TriggerAsync())
	<-started

	err = handler(context.Background(), NewRunDiscoveryTask())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	close(release)
	require.Eventually(t, func() bool { return !sched.Running() }, time.Second, 5*time.Millisecond)
}

func TestHandleRunDiscoveryRuns(t *testing.T) {
	logger, _ := captureLogger()
	ran := false
	sched, err := NewScheduler(func(ctx context.Context) error {
		ran = true
		return nil
	}, 7, 0, "UTC", logger)
	require.NoError(t, err)

	require.NoError(t, handleRunDiscovery(logger, sched)(context.Background(), NewRunDiscoveryTask()))
	assert.True(t, ran)
	assert.Equal(t, TaskRunDiscovery, NewRunDiscoveryTask().Type())
}

func TestNewLoggerLevels(t *testing.T) {
	assert.True(t, NewLogger("debug", "json").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewLogger("warn", "text").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, NewLogger("bogus", "text").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, NewLogger("WARN", "json").Enabled(context.Background(), slog.LevelWarn))
}

func TestNewLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello")
	assert.Contains(t, buf.String(), `"service":"opportunity-finder"`)
}

func TestTaskErrorHandler(t *testing.T) {
	logger, buf := captureLogger()
	handle := taskErrorHandler(logger)

	handle(context.Background(), NewRunDiscoveryTask(), fmt.Errorf("%w: %w", ErrRunInProgress, asynq.SkipRetry))
	assert.Contains(t, buf.String(), "Queued discovery run dropped")
	assert.NotContains(t, buf.String(), "Queued task failed")

	handle(context.Background(), NewRunDiscoveryTask(), errors.New("db down"))
	assert.Contains(t, buf.String(), "Queued task failed")
	assert.Contains(t, buf.String(), "db down")
}
