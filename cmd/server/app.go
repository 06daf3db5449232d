package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jimdaga/opportunity-finder/internal/analyzer"
	"github.com/jimdaga/opportunity-finder/internal/config"
	"github.com/jimdaga/opportunity-finder/internal/database"
	"github.com/jimdaga/opportunity-finder/internal/pipeline"
	"github.com/jimdaga/opportunity-finder/internal/scoring"
	"github.com/jimdaga/opportunity-finder/internal/scrapers"
	"github.com/jimdaga/opportunity-finder/internal/sources"
	"github.com/jimdaga/opportunity-finder/internal/streams"
	"github.com/jimdaga/opportunity-finder/internal/worker"
	"gorm.io/gorm"
)

// app holds the wired components shared by every command
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	scheduler *worker.Scheduler
	publisher *streams.Publisher
}

func newApp() (*app, error) {
	cfg := config.Load()
	logger := worker.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry, err := sources.LoadRegistry(cfg.SourcesFile, logger)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	scs := scrapers.Build(registry, scrapers.Credentials{
		RedditClientID:     cfg.RedditClientID,
		RedditClientSecret: cfg.RedditClientSecret,
		RedditUserAgent:    cfg.RedditUserAgent,
		ProductHuntAPIKey:  cfg.ProductHuntAPIKey,
	}, cfg.ScrapeTimeout, logger)

	backend, err := newBackend(cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		location = time.UTC
	}

	a := &app{cfg: cfg, logger: logger, db: db}

	var opts []pipeline.Option
	if cfg.RedisURL != "" {
		publisher, err := streams.NewPublisher(cfg.RedisURL)
		if err != nil {
			logger.Warn("Report events disabled", "error", err)
		} else {
			a.publisher = publisher
			opts = append(opts, pipeline.WithPublisher(publisher))
		}
	}

	runner := pipeline.NewRunner(
		pipeline.NewStore(db),
		scs,
		analyzer.NewAdapter(backend, cfg.AnalyzerTimeout, logger),
		scoring.NewEngine(scoringWeights(cfg.Weights)),
		pipeline.Config{
			TopN:          cfg.TopN,
			MaxAnalyze:    cfg.MaxAnalyzePerRun,
			ReportsDir:    cfg.ReportsDir,
			ScrapeTimeout: cfg.ScrapeTimeout,
			Location:      location,
		},
		logger,
		opts...,
	)

	a.scheduler, err = worker.NewScheduler(func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}, cfg.DailyRunHour, cfg.DailyRunMinute, cfg.Timezone, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("Discovery pipeline ready",
		"sources", len(scs),
		"analyzer", backend.Name(),
		"daily_run", fmt.Sprintf("%02d:%02d %s", cfg.DailyRunHour, cfg.DailyRunMinute, location),
	)
	return a, nil
}

// Close releases the database and the event publisher
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}

func openDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}

	if shouldSeed(cfg) {
		if err := database.SeedDevData(db, logger); err != nil {
			logger.Warn("Failed to seed development data", "error", err)
		}
	}
	return db, nil
}

// shouldSeed reports whether sample data goes into the database. Seeding
// is opt-in and never touches Postgres.
func shouldSeed(cfg *config.Config) bool {
	return cfg.SeedDevData && cfg.DatabaseURL == ""
}

func newBackend(cfg *config.Config) (analyzer.Backend, error) {
	switch cfg.AnalyzerBackend {
	case "stub", "":
		return analyzer.StubBackend{}, nil
	case "webhook":
		if cfg.AnalyzerURL == "" {
			return nil, fmt.Errorf("ANALYZER_URL is required for the webhook analyzer")
		}
		return analyzer.NewWebhookBackend(cfg.AnalyzerURL, cfg.AnalyzerSecret, &http.Client{Timeout: cfg.AnalyzerTimeout}), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic analyzer")
		}
		return analyzer.NewAnthropicBackend(cfg.AnthropicAPIKey, cfg.AnthropicModel, option.WithRequestTimeout(cfg.AnalyzerTimeout)), nil
	default:
		return nil, fmt.Errorf("unknown analyzer backend %q", cfg.AnalyzerBackend)
	}
}

func scoringWeights(w config.Weights) scoring.Weights {
	return scoring.Weights{
		Pain:                 w.Pain,
		Frequency:            w.Frequency,
		WillingnessToPay:     w.WillingnessToPay,
		Competition:          w.LowCompetition,
		TechnicalFeasibility: w.TechnicalFeasibility,
		AISynergy:            w.AISynergy,
	}
}
