package models

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Opportunity status constants
const (
	StatusNew        = "new"
	StatusSelected   = "selected"
	StatusDiscarded  = "discarded"
	StatusInProgress = "in_progress"
)

// ErrInvalidStatus is returned when a status outside the fixed set is requested
var ErrInvalidStatus = errors.New("invalid opportunity status")

// ValidStatus reports whether s is one of the fixed opportunity statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusSelected, StatusDiscarded, StatusInProgress:
		return true
	}
	return false
}

// ProposedApp describes the product suggested for an opportunity
type ProposedApp struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	KeyFeatures  []string `json:"key_features"`
	PricingModel string   `json:"pricing_model"`
	MVPEstimate  string   `json:"mvp_estimate"`
}

// IdealUsers describes who would pay for the proposed app
type IdealUsers struct {
	Profile        string `json:"profile"`
	MarketSize     string `json:"market_size"`
	BuyingCapacity string `json:"buying_capacity"`
}

// EconomicBenefit is the optional economic estimate attached to an opportunity
type EconomicBenefit struct {
	Summary      string `json:"summary,omitempty"`
	EstimatedMRR string `json:"estimated_mrr,omitempty"`
}

// ScoreBreakdown holds the six per-dimension scores
type ScoreBreakdown struct {
	Pain                 float64 `json:"pain"`
	Frequency            float64 `json:"frequency"`
	WillingnessToPay     float64 `json:"willingness_to_pay"`
	Competition          float64 `json:"competition"`
	TechnicalFeasibility float64 `json:"technical_feasibility"`
	AISynergy            float64 `json:"ai_synergy"`
}

// Opportunity is a scored, ranked, user-facing candidate
type Opportunity struct {
	gorm.Model
	PublicID           string                              `gorm:"uniqueIndex;not null;size:50"`
	Title              string                              `gorm:"not null;size:255"`
	ProblemDescription string                              `gorm:"type:text;not null"`
	Sector             string                              `gorm:"size:100;index"`
	SolutionType       string                              `gorm:"size:100"`
	ProposedApp        datatypes.JSONType[ProposedApp]     `gorm:"type:jsonb"`
	IdealUsers         datatypes.JSONType[IdealUsers]      `gorm:"type:jsonb"`
	EconomicBenefit    datatypes.JSONType[EconomicBenefit] `gorm:"type:jsonb"`
	ScoreBreakdown     datatypes.JSONType[ScoreBreakdown]  `gorm:"type:jsonb"`
	ScoreTotal         float64                             `gorm:"not null;index"`
	Tags               datatypes.JSONSlice[string]         `gorm:"type:jsonb"`
	Status             string                              `gorm:"not null;size:50;default:'new';index"`
	UserNotes          string                              `gorm:"type:text"`
	RawCandidates      []RawCandidate                      `gorm:"many2many:opportunity_sources;"`
}

// GeneratePublicID builds the date-scoped public id, e.g. opp_20251201_003.
func GeneratePublicID(date string, sequence int) string {
	return fmt.Sprintf("opp_%s_%03d", date, sequence)
}
