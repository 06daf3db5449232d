package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskRunDiscovery = "discovery:run"
)

// Enqueuer submits manual discovery runs to the worker queue
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates an Asynq client for task enqueueing
func NewEnqueuer(redisURL string) (*Enqueuer, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(opt)}, nil
}

// NewRunDiscoveryTask builds the manual run task. Runs are not retried:
// the next daily trigger picks up whatever a failed run left behind.
func NewRunDiscoveryTask() *asynq.Task {
	return asynq.NewTask(
		TaskRunDiscovery,
		nil,
		asynq.Queue(QueueDiscovery),
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(30*time.Minute), // Collapse repeated clicks into one queued run
	)
}

// EnqueueRunDiscovery enqueues a manual discovery run and returns the task id
func (e *Enqueuer) EnqueueRunDiscovery(ctx context.Context) (string, error) {
	info, err := e.client.EnqueueContext(ctx, NewRunDiscoveryTask())
	if err != nil {
		return "", fmt.Errorf("failed to enqueue discovery run: %w", err)
	}
	return info.ID, nil
}

// Close closes the Asynq client connection gracefully.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
