package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/opportunity-finder/internal/models"
	"gorm.io/gorm"
)

// ListReportsHandler lists reports, latest first
func ListReportsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := intQuery(c, "limit", 30)
		if err != nil || limit < 1 || limit > maxLimit {
			badRequest(c, "limit must be between 1 and 100")
			return
		}

		var reports []models.DailyReport
		if err := db.WithContext(c.Request.Context()).
			Order("report_date DESC").
			Limit(limit).
			Find(&reports).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
			return
		}

		resp := make([]ReportResponse, 0, len(reports))
		for _, r := range reports {
			resp = append(resp, toReportResponse(r))
		}
		c.JSON(http.StatusOK, gin.H{"reports": resp})
	}
}

// GetReportHandler returns the report for a YYYY-MM-DD date, or the most
// recent one for "latest". ?format=html returns the rendered report.
func GetReportHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Param("date")
		query := db.WithContext(c.Request.Context())

		if date == "latest" {
			query = query.Order("report_date DESC")
		} else {
			if _, err := time.Parse(models.ReportDateLayout, date); err != nil {
				badRequest(c, "invalid date format, use YYYY-MM-DD")
				return
			}
			query = query.Where("report_date = ?", date)
		}

		var report models.DailyReport
		err := query.First(&report).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load report"})
			return
		}

		switch c.Query("format") {
		case "html":
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(report.ReportHTML))
		case "json":
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(report.ReportJSON))
		default:
			c.JSON(http.StatusOK, toReportResponse(report))
		}
	}
}
