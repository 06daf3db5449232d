package api

import (
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
)

// OpportunityResponse is the JSON shape of one opportunity
type OpportunityResponse struct {
	ID                 uint                   `json:"id"`
	PublicID           string                 `json:"public_id"`
	Title              string                 `json:"title"`
	ProblemDescription string                 `json:"problem_description"`
	Sector             string                 `json:"sector"`
	SolutionType       string                 `json:"solution_type"`
	ProposedApp        models.ProposedApp     `json:"proposed_app"`
	IdealUsers         models.IdealUsers      `json:"ideal_users"`
	EconomicBenefit    models.EconomicBenefit `json:"economic_benefit"`
	ScoreBreakdown     models.ScoreBreakdown  `json:"score_breakdown"`
	ScoreTotal         float64                `json:"score_total"`
	Tags               []string               `json:"tags"`
	Status             string                 `json:"status"`
	UserNotes          string                 `json:"user_notes"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// OpportunityListResponse is a page of opportunities
type OpportunityListResponse struct {
	Total         int64                 `json:"total"`
	Skip          int                   `json:"skip"`
	Limit         int                   `json:"limit"`
	Opportunities []OpportunityResponse `json:"opportunities"`
}

// OpportunityUpdate is the PATCH body. Nil fields are left unchanged.
type OpportunityUpdate struct {
	Status    *string `json:"status"`
	UserNotes *string `json:"user_notes"`
}

// ReportResponse is the JSON shape of a daily report
type ReportResponse struct {
	ID                   uint      `json:"id"`
	ReportDate           string    `json:"report_date"`
	TopOpportunities     []uint    `json:"top_opportunities"`
	SourcesConsulted     int       `json:"sources_consulted"`
	TotalAnalyzed        int       `json:"total_analyzed"`
	ExecutionTimeMinutes float64   `json:"execution_time_minutes"`
	CreatedAt            time.Time `json:"created_at"`
}

// SourceResponse is the JSON shape of a source
type SourceResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	URL           string     `json:"url"`
	Active        bool       `json:"active"`
	LastScrapedAt *time.Time `json:"last_scraped_at"`
}

func toOpportunityResponse(o models.Opportunity) OpportunityResponse {
	tags := []string(o.Tags)
	if tags == nil {
		tags = []string{}
	}
	return OpportunityResponse{
		ID:                 o.ID,
		PublicID:           o.PublicID,
		Title:              o.Title,
		ProblemDescription: o.ProblemDescription,
		Sector:             o.Sector,
		SolutionType:       o.SolutionType,
		ProposedApp:        o.ProposedApp.Data(),
		IdealUsers:         o.IdealUsers.Data(),
		EconomicBenefit:    o.EconomicBenefit.Data(),
		ScoreBreakdown:     o.ScoreBreakdown.Data(),
		ScoreTotal:         o.ScoreTotal,
		Tags:               tags,
		Status:             o.Status,
		UserNotes:          o.UserNotes,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func toReportResponse(r models.DailyReport) ReportResponse {
	ids := []uint(r.TopOpportunities)
	if ids == nil {
		ids = []uint{}
	}
	return ReportResponse{
		ID:                   r.ID,
		ReportDate:           r.ReportDate,
		TopOpportunities:     ids,
		SourcesConsulted:     r.SourcesConsulted,
		TotalAnalyzed:        r.TotalAnalyzed,
		ExecutionTimeMinutes: r.ExecutionTimeMinutes,
		CreatedAt:            r.CreatedAt,
	}
}
