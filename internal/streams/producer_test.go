package streams

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReportGenerated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	p := NewPublisherWithClient(rdb)
	p.now = func() time.Time { return time.Date(2025, 12, 1, 7, 3, 0, 0, time.FixedZone("CET", 3600)) }
	defer p.Close()

	ctx := context.Background()
	id, err := p.PublishReportGenerated(ctx, ReportEvent{
		ReportDate:     "2025-12-01",
		OpportunityIDs: []string{"opp_20251201_001", "opp_20251201_002"},
		TopPublicID:    "opp_20251201_001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := rdb.XRange(ctx, StreamReportEvents, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, EventReportGenerated, entries[0].Values["type"])
	assert.Equal(t, SchemaVersionV1, entries[0].Values["schema_version"])
	assert.Equal(t, "2025-12-01T06:03:00Z", entries[0].Values["published_at"])

	var event ReportEvent
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &event))
	assert.Equal(t, "2025-12-01", event.ReportDate)
	assert.Len(t, event.OpportunityIDs, 2)
}

func TestNewPublisherRejectsBadURL(t *testing.T) {
	_, err := NewPublisher("not a url")
	assert.Error(t, err)
}

func TestPublishReportGeneratedFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	p := NewPublisherWithClient(rdb)
	defer p.Close()
	mr.Close()

	_, err := p.PublishReportGenerated(context.Background(), ReportEvent{ReportDate: "2025-12-01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), StreamReportEvents)
}
