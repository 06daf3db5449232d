package scoring

import (
	"math"
	"testing"

	"github.com/jimdaga/opportunity-finder/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFrequencyScore(t *testing.T) {
	tests := []struct {
		count int64
		want  float64
	}{
		{0, 1.0},
		{1, 2.5},
		{2, 2.5},
		{3, 4.5},
		{9, 4.5},
		{10, 6.5},
		{19, 6.5},
		{20, 8.5},
		{49, 8.5},
		{50, 10.0},
		{500, 10.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FrequencyScore(tt.count), "count=%d", tt.count)
	}
}

func TestFrequencyScoreMonotonic(t *testing.T) {
	prev := FrequencyScore(0)
	for n := int64(1); n <= 100; n++ {
		got := FrequencyScore(n)
		assert.GreaterOrEqual(t, got, prev, "count=%d", n)
		prev = got
	}
}

func TestCompetitionScore(t *testing.T) {
	assert.Equal(t, 8.5, CompetitionScore("construction", "SaaS Web App"))
	assert.Equal(t, 8.5, CompetitionScore("Residential Construction", ""))
	assert.Equal(t, 8.5, CompetitionScore("EDUCATION - K12", "Mobile App"))
	assert.Equal(t, 4.0, CompetitionScore("e-commerce", "Browser Extension"))
	assert.Equal(t, 4.0, CompetitionScore("B2B CRM tools", ""))
	assert.Equal(t, 6.5, CompetitionScore("unlisted sector", "API Service"))
	assert.Equal(t, 6.5, CompetitionScore("", ""))
}

func TestTotalDefaultWeights(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	total := engine.Total(models.ScoreBreakdown{
		Pain:                 8,
		Frequency:            6.5,
		WillingnessToPay:     7,
		Competition:          8.5,
		TechnicalFeasibility: 9,
		AISynergy:            6,
	})

	// 2.4 + 1.3 + 1.4 + 1.275 + 0.9 + 0.3 = 7.575
	assert.Equal(t, 7.58, total)
}

func TestTotalAllFives(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	total := engine.Total(models.ScoreBreakdown{
		Pain: 5, Frequency: 5, WillingnessToPay: 5, Competition: 5, TechnicalFeasibility: 5, AISynergy: 5,
	})

	assert.Equal(t, 5.0, total)
}

func TestTotalClamped(t *testing.T) {
	engine := NewEngine(DefaultWeights())

	high := engine.Total(models.ScoreBreakdown{
		Pain: 40, Frequency: 40, WillingnessToPay: 40, Competition: 40, TechnicalFeasibility: 40, AISynergy: 40,
	})
	assert.Equal(t, MaxScore, high)

	low := engine.Total(models.ScoreBreakdown{Pain: -20, Frequency: 1})
	assert.Equal(t, MinScore, low)

	nan := engine.Total(models.ScoreBreakdown{Pain: math.NaN()})
	assert.Equal(t, MinScore, nan)
}

func TestTotalCustomWeights(t *testing.T) {
	engine := NewEngine(Weights{Pain: 1})

	assert.Equal(t, 3.33, engine.Total(models.ScoreBreakdown{Pain: 3.333, Frequency: 10}))
	assert.Equal(t, Weights{Pain: 1}, engine.Weights())
}
