// Package scoring computes the weighted opportunity score, collapses
// near-duplicate candidates and ranks the survivors.
package scoring

import (
	"math"
	"strings"

	"github.com/jimdaga/opportunity-finder/internal/models"
)

const (
	// MinScore and MaxScore bound every total score
	MinScore = 0.0
	MaxScore = 10.0

	// FrequencyWindowDays is the trailing window used to count raw candidates
	FrequencyWindowDays = 7
)

// Competition scores (inverted: higher means less competition)
const (
	LowCompetitionScore     = 8.5
	HighCompetitionScore    = 4.0
	DefaultCompetitionScore = 6.5
)

var lowCompetitionSectors = []string{
	"construction", "manufacturing", "agriculture",
	"government", "education", "non-profit",
}

var highCompetitionSectors = []string{
	"e-commerce", "marketing", "crm", "project management",
}

// Weights are the per-dimension weights of the total score
type Weights struct {
	Pain                 float64
	Frequency            float64
	WillingnessToPay     float64
	Competition          float64
	TechnicalFeasibility float64
	AISynergy            float64
}

// DefaultWeights returns the default weight vector (sums to 1.0)
func DefaultWeights() Weights {
	return Weights{
		Pain:                 0.30,
		Frequency:            0.20,
		WillingnessToPay:     0.20,
		Competition:          0.15,
		TechnicalFeasibility: 0.10,
		AISynergy:            0.05,
	}
}

// Engine turns a score breakdown into a weighted total
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine with the given weights
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Weights returns the weights the engine was built with
func (e *Engine) Weights() Weights {
	return e.weights
}

// Total returns the weighted sum of all six dimensions, rounded to two
// decimals and clamped into [0,10].
func (e *Engine) Total(b models.ScoreBreakdown) float64 {
	terms := [...]struct{ weight, score float64 }{
		{e.weights.Pain, b.Pain},
		{e.weights.Frequency, b.Frequency},
		{e.weights.WillingnessToPay, b.WillingnessToPay},
		{e.weights.Competition, b.Competition},
		{e.weights.TechnicalFeasibility, b.TechnicalFeasibility},
		{e.weights.AISynergy, b.AISynergy},
	}

	var total float64
	for _, t := range terms {
		// explicit conversion keeps the product from being fused into an FMA
		total += float64(t.weight * t.score)
	}

	return clamp(math.Round(total*100) / 100)
}

// FrequencyScore maps the number of raw candidates seen in the trailing
// window onto a fixed step function.
func FrequencyScore(count int64) float64 {
	switch {
	case count >= 50:
		return 10.0
	case count >= 20:
		return 8.5
	case count >= 10:
		return 6.5
	case count >= 3:
		return 4.5
	case count >= 1:
		return 2.5
	default:
		return 1.0
	}
}

// CompetitionScore looks the sector up in the fixed low and high competition
// keyword lists. Matching is a case-insensitive substring test. solutionType
// is accepted for parity with the analyzer output but does not move the score.
func CompetitionScore(sector, solutionType string) float64 {
	s := strings.ToLower(sector)

	if containsAny(s, lowCompetitionSectors) {
		return LowCompetitionScore
	}
	if containsAny(s, highCompetitionSectors) {
		return HighCompetitionScore
	}
	return DefaultCompetitionScore
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}
