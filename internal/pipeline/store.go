package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
	"github.com/jimdaga/opportunity-finder/internal/scrapers"
	"github.com/jimdaga/opportunity-finder/internal/sources"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store persists sources, raw candidates, opportunities and reports
type Store struct {
	db *gorm.DB
}

// NewStore creates a gorm-backed store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindSource returns the source with name, or nil when it does not exist yet
func (s *Store) FindSource(ctx context.Context, name string) (*models.Source, error) {
	var source models.Source
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find source %q: %w", name, err)
	}
	return &source, nil
}

func upsertSource(tx *gorm.DB, def sources.Definition) (*models.Source, error) {
	config, err := json.Marshal(def.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal source config: %w", err)
	}

	source := models.Source{
		Name:   def.Name,
		Type:   def.Type,
		URL:    def.URL,
		Config: datatypes.JSON(config),
		Active: true,
	}
	if err := tx.Where("name = ?", def.Name).
		Attrs(source).
		FirstOrCreate(&source).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert source %q: %w", def.Name, err)
	}
	return &source, nil
}

// IngestBatch stores the items of one source inside a single transaction.
// The source row is created on first use; items whose (source, external id)
// already exists are skipped. It returns only the newly created candidates.
func (s *Store) IngestBatch(ctx context.Context, def sources.Definition, items []scrapers.Normalized, detectedAt time.Time) ([]models.RawCandidate, error) {
	var created []models.RawCandidate

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := upsertSource(tx, def)
		if err != nil {
			return err
		}

		for _, item := range items {
			var count int64
			if err := tx.Model(&models.RawCandidate{}).
				Where("source_id = ? AND external_id = ?", source.ID, item.ExternalID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check raw candidate: %w", err)
			}
			if count > 0 {
				continue
			}

			candidate := models.RawCandidate{
				SourceID:    source.ID,
				ExternalID:  item.ExternalID,
				Title:       item.Title,
				Description: item.Description,
				URL:         item.URL,
				Metadata:    datatypes.NewJSONType(item.Metadata),
				DetectedAt:  detectedAt,
			}
			if err := tx.Omit("Source").Create(&candidate).Error; err != nil {
				return fmt.Errorf("failed to insert raw candidate: %w", err)
			}
			candidate.Source = *source
			created = append(created, candidate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TouchSource records a scrape attempt. Sources that were never created are ignored.
func (s *Store) TouchSource(ctx context.Context, name string, at time.Time) error {
	if err := s.db.WithContext(ctx).Model(&models.Source{}).
		Where("name = ?", name).
		Update("last_scraped_at", at).Error; err != nil {
		return fmt.Errorf("failed to touch source %q: %w", name, err)
	}
	return nil
}

// CountDetectedSince counts raw candidates detected at or after since, across all sources
func (s *Store) CountDetectedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.RawCandidate{}).
		Where("detected_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count raw candidates: %w", err)
	}
	return count, nil
}

// PendingCandidates returns up to limit unprocessed candidates, oldest first
func (s *Store) PendingCandidates(ctx context.Context, limit int) ([]models.RawCandidate, error) {
	var pending []models.RawCandidate
	q := s.db.WithContext(ctx).
		Preload("Source").
		Where("processed = ?", false).
		Order("detected_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending candidates: %w", err)
	}
	return pending, nil
}

// NextSequence returns the next free public id sequence number for date (YYYYMMDD)
func (s *Store) NextSequence(ctx context.Context, date string) (int, error) {
	prefix := models.GeneratePublicID(date, 0)
	prefix = strings.TrimSuffix(prefix, "000")

	var ids []string
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.Opportunity{}).
		Where("public_id LIKE ?", prefix+"%").
		Pluck("public_id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to load public ids: %w", err)
	}

	highest := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// RenderReport builds the daily report from the run's inserted opportunities
type RenderReport func(opportunities []models.Opportunity) (*models.DailyReport, error)

// CommitRun stores the outcome of one run in a single transaction: it inserts
// the opportunities with their raw candidate links, marks every analyzed
// candidate processed and creates or replaces the day's report. Nothing is
// kept when any step fails, so the next run analyzes the same candidates again.
func (s *Store) CommitRun(ctx context.Context, opportunities []models.Opportunity, analyzedIDs []uint, render RenderReport) (*models.DailyReport, error) {
	var daily *models.DailyReport

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(opportunities) > 0 {
			if err := tx.Omit("RawCandidates.*").Create(&opportunities).Error; err != nil {
				return fmt.Errorf("failed to insert opportunities: %w", err)
			}
		}
		if len(analyzedIDs) > 0 {
			if err := tx.Model(&models.RawCandidate{}).
				Where("id IN ?", analyzedIDs).
				Update("processed", true).Error; err != nil {
				return fmt.Errorf("failed to mark candidates processed: %w", err)
			}
		}

		report, err := render(opportunities)
		if err != nil {
			return err
		}
		if err := saveReport(tx, report); err != nil {
			return err
		}
		daily = report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return daily, nil
}

// SaveReport creates the report for its date or replaces the existing one
func (s *Store) SaveReport(ctx context.Context, report *models.DailyReport) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveReport(tx, report)
	})
}

func saveReport(tx *gorm.DB, report *models.DailyReport) error {
	var existing models.DailyReport
	err := tx.Unscoped().Where("report_date = ?", report.ReportDate).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create daily report: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load daily report: %w", err)
	}

	report.ID = existing.ID
	report.CreatedAt = existing.CreatedAt
	if err := tx.Unscoped().Model(&existing).Updates(map[string]any{
		"deleted_at":             nil,
		"top_opportunities":      report.TopOpportunities,
		"report_json":            report.ReportJSON,
		"report_html":            report.ReportHTML,
		"sources_consulted":      report.SourcesConsulted,
		"total_analyzed":         report.TotalAnalyzed,
		"execution_time_minutes": report.ExecutionTimeMinutes,
	}).Error; err != nil {
		return fmt.Errorf("failed to replace daily report: %w", err)
	}
	return nil
}
