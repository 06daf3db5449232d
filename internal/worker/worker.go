package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDiscovery is the only queue the worker consumes
	QueueDiscovery = "discovery"

	workerShutdownTimeout = 30 * time.Second
)

// taskLogger routes asynq's internal logging onto slog
type taskLogger struct {
	logger *slog.Logger
}

func (l *taskLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l *taskLogger) Info(args ...interface{}) { l.logger.Info(fmt.Sprint(args...)) }
func (l *taskLogger) Warn(args ...interface{}) { l.logger.Warn(fmt.Sprint(args...)) }
func (l *taskLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }

func (l *taskLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run consumes queued discovery runs until SIGINT/SIGTERM.
func Run(redisURL string, logger *slog.Logger, sched *Scheduler) error {
	srv, mux, err := newServer(redisURL, logger, sched)
	if err != nil {
		return err
	}
	return srv.Run(mux)
}

// Start consumes queued discovery runs in the background. The returned
// stop function drains the in-flight task and shuts the worker down.
func Start(redisURL string, logger *slog.Logger, sched *Scheduler) (stop func(), err error) {
	srv, mux, err := newServer(redisURL, logger, sched)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return srv.Shutdown, nil
}

func newServer(redisURL string, logger *slog.Logger, sched *Scheduler) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger = logger.With("component", "task_worker")

	// One slot: discovery runs never overlap
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     1,
		Queues:          map[string]int{QueueDiscovery: 1},
		ShutdownTimeout: workerShutdownTimeout,
		ErrorHandler:    asynq.ErrorHandlerFunc(taskErrorHandler(logger)),
		Logger:          &taskLogger{logger: logger},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRunDiscovery, handleRunDiscovery(logger, sched))

	logger.Info("Worker starting", "queue", QueueDiscovery)
	return srv, mux, nil
}

// handleRunDiscovery runs discovery through the scheduler so queued runs
// share the single-flight guard with the daily trigger.
func handleRunDiscovery(logger *slog.Logger, sched *Scheduler) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		taskID, _ := asynq.GetTaskID(ctx)
		logger.Info("Processing queued discovery run", "task_id", taskID)

		if err := sched.Trigger(ctx); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
			}
			return fmt.Errorf("discovery run failed: %w", err)
		}
		return nil
	}
}

// taskErrorHandler logs failed tasks. A run skipped because another was in
// flight is expected and logged as a warning.
func taskErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		taskID, _ := asynq.GetTaskID(ctx)

		if errors.Is(err, ErrRunInProgress) {
			logger.Warn("Queued discovery run dropped, another run in progress", "task_id", taskID)
			return
		}

		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.Error("Queued task failed",
			"task_type", task.Type(),
			"task_id", taskID,
			"retry_count", retried,
			"max_retry", maxRetry,
			"error", err,
		)
	}
}
