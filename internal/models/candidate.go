package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CandidateMetadata holds engagement counters and the original timestamp of a raw item.
// Extra carries feed-specific fields (subreddit, author, topics, ...).
type CandidateMetadata struct {
	Upvotes   int            `json:"upvotes"`
	Comments  int            `json:"comments"`
	CreatedAt string         `json:"created_at,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// RawCandidate is an unprocessed item collected from one source.
// ExternalID is unique within its source.
type RawCandidate struct {
	gorm.Model
	SourceID    uint                                  `gorm:"not null;uniqueIndex:idx_source_external"`
	Source      Source                                `gorm:"constraint:OnDelete:CASCADE;"`
	ExternalID  string                                `gorm:"not null;size:255;uniqueIndex:idx_source_external"`
	Title       string                                `gorm:"type:text"`
	Description string                                `gorm:"type:text"`
	URL         string                                `gorm:"type:text"`
	Metadata    datatypes.JSONType[CandidateMetadata] `gorm:"type:jsonb"`
	DetectedAt  time.Time                             `gorm:"not null;index"`
	Processed   bool                                  `gorm:"not null;default:false;index"`
}

// ProblemText joins title and description the way the analyzer expects it.
func (c RawCandidate) ProblemText() string {
	if c.Description == "" {
		return c.Title
	}
	return c.Title + "\n\n" + c.Description
}
