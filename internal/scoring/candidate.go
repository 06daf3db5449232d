package scoring

import "github.com/jimdaga/opportunity-finder/internal/models"

// Candidate is an analyzed and scored raw candidate, not yet persisted
type Candidate struct {
	RawCandidateID     uint
	Title              string
	ProblemDescription string
	Sector             string
	SolutionType       string
	ProposedApp        models.ProposedApp
	IdealUsers         models.IdealUsers
	EconomicBenefit    models.EconomicBenefit
	Breakdown          models.ScoreBreakdown
	Total              float64
	Tags               []string
	Fallback           bool
}
