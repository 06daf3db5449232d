package analyzer

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"

	"github.com/jimdaga/opportunity-finder/internal/models"
)

var stubSectors = []string{"Construction", "E-commerce", "Healthcare", "Education", "Marketing", "Legal Services"}

// StubBackend derives a deterministic analysis from the problem text.
// Used in development and tests when no real backend is configured.
type StubBackend struct{}

// Name implements Backend
func (StubBackend) Name() string { return "stub" }

// Analyze implements Backend
func (StubBackend) Analyze(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(req.ProblemText))
	sum := h.Sum32()

	score := func(shift uint) float64 {
		return float64((sum>>shift)%101) / 10
	}

	title := req.ProblemText
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}

	analysis := Analysis{
		Scores: Scores{
			Pain:                 score(0),
			WillingnessToPay:     score(7),
			TechnicalFeasibility: score(14),
			AISynergy:            score(21),
		},
		Sector:       stubSectors[sum%uint32(len(stubSectors))],
		SolutionType: "SaaS Web App",
		ProposedApp: models.ProposedApp{
			Name:         "Stub App",
			Description:  "Generated for: " + title,
			KeyFeatures:  []string{"Dashboard", "Automation rules", "Reports"},
			PricingModel: "$29-99/month",
			MVPEstimate:  "3-4 weeks",
		},
		IdealUsers: models.IdealUsers{
			Profile:        "Small business owners",
			MarketSize:     "Unknown",
			BuyingCapacity: "Medium",
		},
		Tags: []string{"stub"},
	}
	return json.Marshal(analysis)
}
