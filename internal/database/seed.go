package database

import (
	"log/slog"
	"time"

	"github.com/jimdaga/opportunity-finder/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const seedSourceName = "dev-seed"

// SeedDevData populates the database with development sample data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB, logger *slog.Logger) error {
	var existing models.Source
	result := db.Where("name = ?", seedSourceName).First(&existing)
	if result.Error == nil {
		logger.Info("Seed data already exists, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		source := models.Source{
			Name:          seedSourceName,
			Type:          "rss",
			URL:           "https://example.com/feed.xml",
			Config:        datatypes.JSON([]byte(`{}`)),
			Active:        true,
			LastScrapedAt: &now,
		}
		if err := tx.Create(&source).Error; err != nil {
			return err
		}

		raw := []models.RawCandidate{
			{
				SourceID:    source.ID,
				ExternalID:  "seed-1",
				Title:       "Contractors still track site diaries on paper",
				Description: "Every evening I copy notes and photos into a spreadsheet. There has to be a better way.",
				URL:         "https://example.com/posts/1",
				Metadata:    datatypes.NewJSONType(models.CandidateMetadata{Upvotes: 48, Comments: 12}),
				DetectedAt:  now,
				Processed:   true,
			},
			{
				SourceID:    source.ID,
				ExternalID:  "seed-2",
				Title:       "Dental clinics lose bookings to manual reminders",
				Description: "Our front desk calls every patient the day before. No-shows are still 15%.",
				URL:         "https://example.com/posts/2",
				Metadata:    datatypes.NewJSONType(models.CandidateMetadata{Upvotes: 31, Comments: 9}),
				DetectedAt:  now,
				Processed:   true,
			},
		}
		if err := tx.Create(&raw).Error; err != nil {
			return err
		}

		date := now.Format("20060102")
		opportunities := []models.Opportunity{
			{
				PublicID:           models.GeneratePublicID(date, 1),
				Title:              raw[0].Title,
				ProblemDescription: raw[0].ProblemText(),
				Sector:             "Construction",
				SolutionType:       "Mobile App",
				ProposedApp: datatypes.NewJSONType(models.ProposedApp{
					Name:         "SiteLog",
					Description:  "Voice and photo site diaries that compile into daily reports.",
					KeyFeatures:  []string{"Photo capture", "Voice notes", "PDF export"},
					PricingModel: "$39-99/month per crew",
					MVPEstimate:  "4 weeks",
				}),
				IdealUsers: datatypes.NewJSONType(models.IdealUsers{Profile: "Small general contractors", MarketSize: "Unknown", BuyingCapacity: "Medium"}),
				ScoreBreakdown: datatypes.NewJSONType(models.ScoreBreakdown{
					Pain: 8, Frequency: 6.5, WillingnessToPay: 7, Competition: 8.5, TechnicalFeasibility: 9, AISynergy: 6,
				}),
				ScoreTotal:    7.58,
				Tags:          datatypes.JSONSlice[string]{"construction", "field-work"},
				Status:        models.StatusNew,
				RawCandidates: []models.RawCandidate{raw[0]},
			},
			{
				PublicID:           models.GeneratePublicID(date, 2),
				Title:              raw[1].Title,
				ProblemDescription: raw[1].ProblemText(),
				Sector:             "Healthcare - Dental Clinics",
				SolutionType:       "Automation Workflow",
				ProposedApp: datatypes.NewJSONType(models.ProposedApp{
					Name:         "ChairFill",
					Description:  "Automated SMS reminders with one-tap rescheduling.",
					KeyFeatures:  []string{"SMS reminders", "Waitlist backfill"},
					PricingModel: "$79/month per clinic",
					MVPEstimate:  "3 weeks",
				}),
				IdealUsers: datatypes.NewJSONType(models.IdealUsers{Profile: "Independent dental clinics", MarketSize: "Unknown", BuyingCapacity: "High"}),
				ScoreBreakdown: datatypes.NewJSONType(models.ScoreBreakdown{
					Pain: 7, Frequency: 6.5, WillingnessToPay: 8, Competition: 6.5, TechnicalFeasibility: 8, AISynergy: 5,
				}),
				ScoreTotal:    7.0,
				Tags:          datatypes.JSONSlice[string]{"healthcare", "scheduling"},
				Status:        models.StatusSelected,
				RawCandidates: []models.RawCandidate{raw[1]},
			},
		}
		if err := tx.Omit("RawCandidates.*").Create(&opportunities).Error; err != nil {
			return err
		}

		report := models.DailyReport{
			ReportDate:       now.Format(models.ReportDateLayout),
			TopOpportunities: datatypes.JSONSlice[uint]{opportunities[0].ID, opportunities[1].ID},
			ReportJSON:       datatypes.JSON([]byte(`{}`)),
			SourcesConsulted: 1,
			TotalAnalyzed:    2,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		logger.Info("Seeded dev data", "sources", 1, "raw_candidates", len(raw), "opportunities", len(opportunities), "reports", 1)
		return nil
	})
}
