package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
)

const (
	descriptionLimit = 300
	featureLimit     = 5
)

//go:embed templates/*.html
var templateFS embed.FS

var htmlTemplate = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"score":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"truncate": func(s string) string { return truncate(s, descriptionLimit) },
	"features": topFeatures,
	"longDate": longDate,
	"minutes":  func(v float64) string { return fmt.Sprintf("%.1f", math.Round(v*10)/10) },
	"orNA":     orNA,
}).ParseFS(templateFS, "templates/report.html"))

// RenderHTML renders the human-readable report
func RenderHTML(r Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// truncate cuts s to limit characters, appending "..." when anything was cut
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func topFeatures(app models.ProposedApp) []string {
	if len(app.KeyFeatures) > featureLimit {
		return app.KeyFeatures[:featureLimit]
	}
	return app.KeyFeatures
}

func longDate(date string) string {
	t, err := time.Parse(models.ReportDateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
