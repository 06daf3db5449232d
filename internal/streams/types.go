// Package streams announces pipeline results on Redis Streams.
package streams

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// StreamReportEvents carries one entry per persisted daily report
	StreamReportEvents = "reports:events"

	// EventReportGenerated is the type of a ReportEvent entry
	EventReportGenerated = "report:generated"

	SchemaVersionV1 = "v1"

	// streamMaxLen caps the stream; trimming is approximate
	streamMaxLen = 1000
)

// ReportEvent announces a persisted daily report
type ReportEvent struct {
	ReportDate     string   `json:"report_date"`
	OpportunityIDs []string `json:"opportunity_ids"`
	TopPublicID    string   `json:"top_public_id,omitempty"`
}

// envelope builds the stream entry fields for one event
func envelope(eventType string, payload any, at time.Time) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return map[string]any{
		"type":           eventType,
		"payload":        string(body),
		"published_at":   at.UTC().Format(time.RFC3339),
		"schema_version": SchemaVersionV1,
	}, nil
}
