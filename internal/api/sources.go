package api

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/opportunity-finder/internal/models"
	"gorm.io/gorm"
)

// ListSourcesHandler lists the sources seen by the pipeline
func ListSourcesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sources []models.Source
		if err := db.WithContext(c.Request.Context()).Order("name").Find(&sources).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sources"})
			return
		}

		resp := make([]SourceResponse, 0, len(sources))
		for _, s := range sources {
			resp = append(resp, SourceResponse{
				ID:            s.ID,
				Name:          s.Name,
				Type:          s.Type,
				URL:           s.URL,
				Active:        s.Active,
				LastScrapedAt: s.LastScrapedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"sources": resp})
	}
}

type sectorStat struct {
	Sector   string  `json:"sector"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// AnalyticsHandler returns aggregate statistics over stored opportunities
func AnalyticsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.WithContext(c.Request.Context()).Model(&models.Opportunity{})

		var total int64
		if err := q.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
			return
		}

		var avg struct{ Avg float64 }
		db.WithContext(c.Request.Context()).Model(&models.Opportunity{}).
			Select("COALESCE(AVG(score_total), 0) AS avg").
			Scan(&avg)

		var sectors []sectorStat
		db.WithContext(c.Request.Context()).Model(&models.Opportunity{}).
			Select("sector, COUNT(id) AS count, AVG(score_total) AS avg_score").
			Where("sector <> ''").
			Group("sector").
			Order("count DESC").
			Limit(10).
			Scan(&sectors)
		if sectors == nil {
			sectors = []sectorStat{}
		}
		for i := range sectors {
			sectors[i].AvgScore = roundTo2(sectors[i].AvgScore)
		}

		var statuses []struct {
			Status string
			Count  int64
		}
		db.WithContext(c.Request.Context()).Model(&models.Opportunity{}).
			Select("status, COUNT(id) AS count").
			Group("status").
			Scan(&statuses)

		byStatus := make(map[string]int64, len(statuses))
		for _, s := range statuses {
			byStatus[s.Status] = s.Count
		}

		c.JSON(http.StatusOK, gin.H{
			"total_opportunities":     total,
			"avg_score":               roundTo2(avg.Avg),
			"top_sectors":             sectors,
			"opportunities_by_status": byStatus,
		})
	}
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
