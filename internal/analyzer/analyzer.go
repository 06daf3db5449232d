// Package analyzer delegates scoring of free-form problem text to an
// external analysis backend and owns the fallback contract when that
// backend fails.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
)

// ErrInvalidResponse is returned when a backend response fails schema validation
var ErrInvalidResponse = errors.New("invalid analyzer response")

// DefaultTimeout bounds a single backend call
const DefaultTimeout = 30 * time.Second

// Metadata is the source context sent along with the problem text
type Metadata struct {
	Source   string `json:"source"`
	Upvotes  int    `json:"upvotes"`
	Comments int    `json:"comments"`
	URL      string `json:"url"`
}

// Request is one analysis request
type Request struct {
	ProblemText string   `json:"problem_text"`
	Metadata    Metadata `json:"metadata"`
}

// Scores are the four dimensions scored by the backend, each in [0,10]
type Scores struct {
	Pain                 float64 `json:"pain"`
	WillingnessToPay     float64 `json:"willingness_to_pay"`
	TechnicalFeasibility float64 `json:"technical_feasibility"`
	AISynergy            float64 `json:"ai_synergy"`
}

// Justifications explain each backend score
type Justifications struct {
	Pain                 string `json:"pain"`
	WillingnessToPay     string `json:"willingness_to_pay"`
	TechnicalFeasibility string `json:"technical_feasibility"`
	AISynergy            string `json:"ai_synergy"`
}

// Analysis is a validated backend response
type Analysis struct {
	Scores          Scores                 `json:"scores"`
	Justifications  Justifications         `json:"justifications"`
	Sector          string                 `json:"sector"`
	SolutionType    string                 `json:"solution_type"`
	ProposedApp     models.ProposedApp     `json:"proposed_app"`
	IdealUsers      models.IdealUsers      `json:"ideal_users"`
	EconomicBenefit models.EconomicBenefit `json:"economic_benefit"`
	Tags            []string               `json:"tags"`
}

// Backend returns the raw JSON analysis of one request
type Backend interface {
	// Name identifies the backend in report metadata
	Name() string
	Analyze(ctx context.Context, req Request) ([]byte, error)
}

// Fallback returns the neutral record used whenever analysis fails
func Fallback() Analysis {
	const unknown = "Unknown"
	const unable = "Unable to analyze"
	return Analysis{
		Scores: Scores{Pain: 5.0, WillingnessToPay: 5.0, TechnicalFeasibility: 5.0, AISynergy: 5.0},
		Justifications: Justifications{
			Pain:                 unable,
			WillingnessToPay:     unable,
			TechnicalFeasibility: unable,
			AISynergy:            unable,
		},
		Sector:       unknown,
		SolutionType: unknown,
		ProposedApp: models.ProposedApp{
			Name:         unknown,
			Description:  "Analysis failed",
			KeyFeatures:  []string{},
			PricingModel: unknown,
			MVPEstimate:  unknown,
		},
		IdealUsers: models.IdealUsers{
			Profile:        unknown,
			MarketSize:     unknown,
			BuyingCapacity: "Medium",
		},
		Tags: []string{},
	}
}

// Adapter wraps a Backend with a per-call timeout, response validation and the fallback record
type Adapter struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger
}

// NewAdapter creates an adapter around backend. A non-positive timeout uses DefaultTimeout.
func NewAdapter(backend Backend, timeout time.Duration, logger *slog.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{backend: backend, timeout: timeout, logger: logger}
}

// BackendName returns the identifier of the wrapped backend
func (a *Adapter) BackendName() string {
	return a.backend.Name()
}

// Score analyzes one request. It never fails: any backend, decoding or
// validation error yields Fallback() and fallback=true.
func (a *Adapter) Score(ctx context.Context, req Request) (analysis Analysis, fallback bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Analyzer backend panicked", "backend", a.backend.Name(), "panic", r)
			analysis, fallback = Fallback(), true
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.backend.Analyze(callCtx, req)
	if err != nil {
		a.logger.Error("Analyzer backend failed", "backend", a.backend.Name(), "source", req.Metadata.Source, "error", err)
		return Fallback(), true
	}

	result, err := ValidateResponse(raw)
	if err != nil {
		a.logger.Error("Analyzer response rejected", "backend", a.backend.Name(), "source", req.Metadata.Source, "error", err)
		return Fallback(), true
	}

	return *result, false
}
