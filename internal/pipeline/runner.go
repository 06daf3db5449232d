// Package pipeline runs one end-to-end discovery pass: scrape all active
// sources concurrently, ingest new raw candidates, analyze and score the
// pending ones, deduplicate, rank, persist and report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jimdaga/opportunity-finder/internal/analyzer"
	"github.com/jimdaga/opportunity-finder/internal/models"
	"github.com/jimdaga/opportunity-finder/internal/report"
	"github.com/jimdaga/opportunity-finder/internal/scoring"
	"github.com/jimdaga/opportunity-finder/internal/scrapers"
	"github.com/jimdaga/opportunity-finder/internal/streams"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultMaxAnalyze    = 50
	defaultScrapeTimeout = 60 * time.Second
	titleLimit           = 255
)

// ReportPublisher announces persisted reports
type ReportPublisher interface {
	PublishReportGenerated(ctx context.Context, event streams.ReportEvent) (string, error)
}

// Config tunes a Runner. Zero values fall back to the defaults.
type Config struct {
	TopN          int
	MaxAnalyze    int
	ReportsDir    string
	ScrapeTimeout time.Duration
	Location      *time.Location
}

// Summary describes a finished run
type Summary struct {
	RunID            string
	ReportDate       string
	SourcesConsulted int
	Collected        int
	Analyzed         int
	Fallbacks        int
	Duplicates       int
	Opportunities    []models.Opportunity
	Report           *models.DailyReport
	ReportPath       string
	Elapsed          time.Duration
}

// Runner executes discovery runs. It holds no per-run state; the caller
// is responsible for never running two passes at once.
type Runner struct {
	store     *Store
	scrapers  []scrapers.Scraper
	analyzer  *analyzer.Adapter
	engine    *scoring.Engine
	publisher ReportPublisher
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Runner
type Option func(*Runner)

// WithPublisher publishes a report event after every persisted report
func WithPublisher(p ReportPublisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner wires a runner
func NewRunner(store *Store, scs []scrapers.Scraper, adapter *analyzer.Adapter, engine *scoring.Engine, cfg Config, logger *slog.Logger, opts ...Option) *Runner {
	if cfg.TopN <= 0 {
		cfg.TopN = scoring.DefaultTopN
	}
	if cfg.MaxAnalyze <= 0 {
		cfg.MaxAnalyze = defaultMaxAnalyze
	}
	if cfg.ScrapeTimeout <= 0 {
		cfg.ScrapeTimeout = defaultScrapeTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}

	r := &Runner{
		store:    store,
		scrapers: scs,
		analyzer: adapter,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one discovery pass. Scraper and analyzer failures are
// contained; only persistence failures are returned.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := r.now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	summary := &Summary{RunID: runID, SourcesConsulted: len(r.scrapers)}
	logger.Info("Pipeline run started", "sources", len(r.scrapers))

	collected, err := r.collect(ctx, logger, start)
	if err != nil {
		return nil, err
	}
	summary.Collected = collected

	pending, err := r.store.PendingCandidates(ctx, r.cfg.MaxAnalyze)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		summary.Elapsed = r.now().Sub(start)
		logger.Warn("No unprocessed candidates, skipping report", "collected", collected)
		return summary, nil
	}

	candidates, fallbacks, err := r.score(ctx, logger, pending, start)
	if err != nil {
		return nil, err
	}
	summary.Analyzed = len(pending)
	summary.Fallbacks = fallbacks

	unique := scoring.Deduplicate(candidates, logger)
	summary.Duplicates = len(candidates) - len(unique)
	top := scoring.TopN(unique, r.cfg.TopN)

	local := start.In(r.cfg.Location)
	summary.ReportDate = local.Format(models.ReportDateLayout)

	opportunities, analyzed, err := r.prepare(ctx, local, top, pending)
	if err != nil {
		return nil, err
	}

	var built report.Report
	daily, err := r.store.CommitRun(ctx, opportunities, analyzed, func(inserted []models.Opportunity) (*models.DailyReport, error) {
		summary.Opportunities = inserted
		summary.Elapsed = r.now().Sub(start)
		built = r.buildReport(summary)
		return dailyReport(summary, built)
	})
	if err != nil {
		summary.Opportunities = nil
		return nil, err
	}
	summary.Report = daily
	summary.ReportPath = r.publishReport(ctx, logger, summary, built)
	summary.Elapsed = r.now().Sub(start)

	logger.Info("Pipeline run completed",
		"collected", summary.Collected,
		"analyzed", summary.Analyzed,
		"fallbacks", summary.Fallbacks,
		"duplicates", summary.Duplicates,
		"opportunities", len(summary.Opportunities),
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

// collect fans out every scraper concurrently and ingests the results source by source
func (r *Runner) collect(ctx context.Context, logger *slog.Logger, now time.Time) (int, error) {
	results := make([]scrapers.Result, len(r.scrapers))

	var wg sync.WaitGroup
	for i, s := range r.scrapers {
		wg.Add(1)
		go func(i int, s scrapers.Scraper) {
			defer wg.Done()
			scrapeCtx, cancel := context.WithTimeout(ctx, r.cfg.ScrapeTimeout)
			defer cancel()
			results[i] = scrapers.Scrape(scrapeCtx, s, logger)
		}(i, s)
	}
	wg.Wait()

	collected := 0
	for _, res := range results {
		if res.Err == nil {
			created, err := r.store.IngestBatch(ctx, res.Source, res.Items, now)
			if err != nil {
				return 0, fmt.Errorf("failed to ingest %s: %w", res.Source.Name, err)
			}
			collected += len(created)
			logger.Info("Ingested source", "source", res.Source.Name, "fetched", len(res.Items), "new", len(created))
		}

		if err := r.store.TouchSource(ctx, res.Source.Name, now); err != nil {
			return 0, err
		}
	}
	return collected, nil
}

// score analyzes every pending candidate and computes its total
func (r *Runner) score(ctx context.Context, logger *slog.Logger, pending []models.RawCandidate, now time.Time) ([]scoring.Candidate, int, error) {
	since := now.Add(-scoring.FrequencyWindowDays * 24 * time.Hour)
	recent, err := r.store.CountDetectedSince(ctx, since)
	if err != nil {
		return nil, 0, err
	}
	frequency := scoring.FrequencyScore(recent)
	logger.Info("Computed frequency score", "recent_candidates", recent, "frequency", frequency)

	fallbacks := 0
	candidates := make([]scoring.Candidate, 0, len(pending))
	for _, raw := range pending {
		meta := raw.Metadata.Data()
		analysis, fallback := r.analyzer.Score(ctx, analyzer.Request{
			ProblemText: raw.ProblemText(),
			Metadata: analyzer.Metadata{
				Source:   raw.Source.Name,
				Upvotes:  meta.Upvotes,
				Comments: meta.Comments,
				URL:      raw.URL,
			},
		})
		if fallback {
			fallbacks++
		}

		breakdown := models.ScoreBreakdown{
			Pain:                 analysis.Scores.Pain,
			Frequency:            frequency,
			WillingnessToPay:     analysis.Scores.WillingnessToPay,
			Competition:          scoring.CompetitionScore(analysis.Sector, analysis.SolutionType),
			TechnicalFeasibility: analysis.Scores.TechnicalFeasibility,
			AISynergy:            analysis.Scores.AISynergy,
		}

		candidates = append(candidates, scoring.Candidate{
			RawCandidateID:     raw.ID,
			Title:              raw.Title,
			ProblemDescription: raw.ProblemText(),
			Sector:             analysis.Sector,
			SolutionType:       analysis.SolutionType,
			ProposedApp:        analysis.ProposedApp,
			IdealUsers:         analysis.IdealUsers,
			EconomicBenefit:    analysis.EconomicBenefit,
			Breakdown:          breakdown,
			Total:              r.engine.Total(breakdown),
			Tags:               analysis.Tags,
			Fallback:           fallback,
		})
	}

	logger.Info("Scored candidates", "count", len(candidates), "fallbacks", fallbacks)
	return candidates, fallbacks, nil
}

// prepare assigns public ids to the ranked candidates and lists the analyzed candidate ids
func (r *Runner) prepare(ctx context.Context, local time.Time, top []scoring.Candidate, pending []models.RawCandidate) ([]models.Opportunity, []uint, error) {
	date := local.Format("20060102")
	seq, err := r.store.NextSequence(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	opportunities := make([]models.Opportunity, 0, len(top))
	for i, c := range top {
		opportunities = append(opportunities, models.Opportunity{
			PublicID:           models.GeneratePublicID(date, seq+i),
			Title:              clip(c.Title, titleLimit),
			ProblemDescription: c.ProblemDescription,
			Sector:             clip(c.Sector, 100),
			SolutionType:       clip(c.SolutionType, 100),
			ProposedApp:        datatypes.NewJSONType(c.ProposedApp),
			IdealUsers:         datatypes.NewJSONType(c.IdealUsers),
			EconomicBenefit:    datatypes.NewJSONType(c.EconomicBenefit),
			ScoreBreakdown:     datatypes.NewJSONType(c.Breakdown),
			ScoreTotal:         c.Total,
			Tags:               datatypes.JSONSlice[string](c.Tags),
			Status:             models.StatusNew,
			RawCandidates:      []models.RawCandidate{{Model: gorm.Model{ID: c.RawCandidateID}}},
		})
	}

	analyzed := make([]uint, 0, len(pending))
	for _, raw := range pending {
		analyzed = append(analyzed, raw.ID)
	}
	return opportunities, analyzed, nil
}

func (r *Runner) buildReport(summary *Summary) report.Report {
	return report.Build(summary.ReportDate, summary.Opportunities, report.Metadata{
		SourcesConsulted:     summary.SourcesConsulted,
		TotalAnalyzed:        summary.Analyzed,
		ExecutionTimeMinutes: summary.Elapsed.Minutes(),
		Backend:              r.analyzer.BackendName(),
	})
}

// dailyReport renders the stored form of a built report
func dailyReport(summary *Summary, built report.Report) (*models.DailyReport, error) {
	body, err := built.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	html, err := report.RenderHTML(built)
	if err != nil {
		return nil, err
	}

	ids := make(datatypes.JSONSlice[uint], 0, len(summary.Opportunities))
	for _, o := range summary.Opportunities {
		ids = append(ids, o.ID)
	}

	return &models.DailyReport{
		ReportDate:           summary.ReportDate,
		TopOpportunities:     ids,
		ReportJSON:           datatypes.JSON(body),
		ReportHTML:           html,
		SourcesConsulted:     summary.SourcesConsulted,
		TotalAnalyzed:        summary.Analyzed,
		ExecutionTimeMinutes: built.Metadata.ExecutionTimeMinutes,
	}, nil
}

// publishReport writes the report file and announces the committed report.
// Failures here are logged; the report is already stored.
func (r *Runner) publishReport(ctx context.Context, logger *slog.Logger, summary *Summary, built report.Report) string {
	path, err := report.WriteFile(r.cfg.ReportsDir, built)
	if err != nil {
		logger.Error("Failed to write report file", "report_date", summary.ReportDate, "error", err)
		path = ""
	} else {
		logger.Info("Wrote report file", "path", path)
	}

	if r.publisher != nil {
		event := streams.ReportEvent{ReportDate: summary.ReportDate, OpportunityIDs: make([]string, 0, len(summary.Opportunities))}
		for _, o := range summary.Opportunities {
			event.OpportunityIDs = append(event.OpportunityIDs, o.PublicID)
		}
		if len(event.OpportunityIDs) > 0 {
			event.TopPublicID = event.OpportunityIDs[0]
		}
		if _, err := r.publisher.PublishReportGenerated(ctx, event); err != nil {
			logger.Error("Failed to publish report event", "report_date", summary.ReportDate, "error", err)
		}
	}
	return path
}

func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
