// Package report renders a run's ranked opportunities into the structured
// JSON report and the human-readable HTML report.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
)

// Version is the structured report format version
const Version = "1.0"

// Metadata describes the run that produced a report
type Metadata struct {
	SourcesConsulted     int     `json:"sources_consulted"`
	TotalAnalyzed        int     `json:"total_analyzed"`
	ExecutionTimeMinutes float64 `json:"execution_time_minutes"`
	Backend              string  `json:"analysis_backend"`
}

// Score is the total and per-dimension breakdown of one entry
type Score struct {
	Total     float64               `json:"total"`
	Breakdown models.ScoreBreakdown `json:"breakdown"`
}

// Entry is one ranked opportunity in the structured report
type Entry struct {
	ID                 string                 `json:"id"`
	Rank               int                    `json:"rank"`
	Title              string                 `json:"title"`
	ProblemDescription string                 `json:"problem_description"`
	Sector             string                 `json:"sector"`
	SolutionType       string                 `json:"solution_type"`
	ProposedApp        models.ProposedApp     `json:"proposed_app"`
	IdealUsers         models.IdealUsers      `json:"ideal_users"`
	EconomicBenefit    models.EconomicBenefit `json:"economic_benefit"`
	Score              Score                  `json:"score"`
	Tags               []string               `json:"tags"`
	CreatedAt          *time.Time             `json:"created_at"`
}

// Report is the structured daily report
type Report struct {
	Date          string   `json:"date"`
	Version       string   `json:"version"`
	Opportunities []Entry  `json:"opportunities"`
	Metadata      Metadata `json:"metadata"`
}

// Build assembles the structured report for date from opportunities in rank order
func Build(date string, opportunities []models.Opportunity, meta Metadata) Report {
	entries := make([]Entry, 0, len(opportunities))
	for i, opp := range opportunities {
		entry := Entry{
			ID:                 opp.PublicID,
			Rank:               i + 1,
			Title:              opp.Title,
			ProblemDescription: opp.ProblemDescription,
			Sector:             orUnknown(opp.Sector),
			SolutionType:       orUnknown(opp.SolutionType),
			ProposedApp:        opp.ProposedApp.Data(),
			IdealUsers:         opp.IdealUsers.Data(),
			EconomicBenefit:    opp.EconomicBenefit.Data(),
			Score: Score{
				Total:     opp.ScoreTotal,
				Breakdown: opp.ScoreBreakdown.Data(),
			},
			Tags: []string(opp.Tags),
		}
		if entry.Tags == nil {
			entry.Tags = []string{}
		}
		if !opp.CreatedAt.IsZero() {
			created := opp.CreatedAt.UTC()
			entry.CreatedAt = &created
		}
		entries = append(entries, entry)
	}

	meta.ExecutionTimeMinutes = math.Round(meta.ExecutionTimeMinutes*100) / 100

	return Report{
		Date:          date,
		Version:       Version,
		Opportunities: entries,
		Metadata:      meta,
	}
}

// JSON returns the indented structured report
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FileName is the artifact name for a report date
func FileName(date string) string {
	return fmt.Sprintf("report_%s.json", date)
}

// WriteFile writes the structured report into dir, replacing any previous
// file for the same date, and returns the written path.
func WriteFile(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := r.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(dir, FileName(r.Date))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
