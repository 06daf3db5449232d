package streams

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends pipeline events to Redis Streams
type Publisher struct {
	rdb *redis.Client
	now func() time.Time
}

// NewPublisher connects to redisURL
func NewPublisher(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewPublisherWithClient(redis.NewClient(opts)), nil
}

// NewPublisherWithClient wraps an existing client
func NewPublisherWithClient(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb, now: time.Now}
}

// PublishReportGenerated appends a report:generated entry and returns its stream id
func (p *Publisher) PublishReportGenerated(ctx context.Context, event ReportEvent) (string, error) {
	return p.publish(ctx, StreamReportEvents, EventReportGenerated, event)
}

func (p *Publisher) publish(ctx context.Context, stream, eventType string, payload any) (string, error) {
	values, err := envelope(eventType, payload, p.now())
	if err != nil {
		return "", err
	}

	id, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append to %s: %w", stream, err)
	}
	return id, nil
}

// Close closes the Redis client
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
