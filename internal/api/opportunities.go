package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/opportunity-finder/internal/models"
	"gorm.io/gorm"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ListOpportunitiesHandler lists opportunities with filtering and pagination.
//
// Query parameters: skip, limit (1..100), sector (substring, case-insensitive),
// status, min_score (0..10), search (title and description).
func ListOpportunitiesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		skip, err := intQuery(c, "skip", 0)
		if err != nil || skip < 0 {
			badRequest(c, "skip must be a non-negative integer")
			return
		}
		limit, err := intQuery(c, "limit", defaultLimit)
		if err != nil || limit < 1 || limit > maxLimit {
			badRequest(c, "limit must be between 1 and 100")
			return
		}

		query := db.WithContext(c.Request.Context()).Model(&models.Opportunity{})

		if sector := c.Query("sector"); sector != "" {
			query = query.Where("LOWER(sector) LIKE ?", "%"+strings.ToLower(sector)+"%")
		}
		if status := c.Query("status"); status != "" {
			if !models.ValidStatus(status) {
				badRequest(c, models.ErrInvalidStatus.Error())
				return
			}
			query = query.Where("status = ?", status)
		}
		if raw := c.Query("min_score"); raw != "" {
			minScore, err := strconv.ParseFloat(raw, 64)
			if err != nil || minScore < 0 || minScore > 10 {
				badRequest(c, "min_score must be a number between 0 and 10")
				return
			}
			query = query.Where("score_total >= ?", minScore)
		}
		if search := c.Query("search"); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(problem_description) LIKE ?", pattern, pattern)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count opportunities"})
			return
		}

		var opportunities []models.Opportunity
		if err := query.
			Order("score_total DESC").
			Order("created_at DESC").
			Offset(skip).
			Limit(limit).
			Find(&opportunities).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list opportunities"})
			return
		}

		resp := OpportunityListResponse{
			Total:         total,
			Skip:          skip,
			Limit:         limit,
			Opportunities: make([]OpportunityResponse, 0, len(opportunities)),
		}
		for _, o := range opportunities {
			resp.Opportunities = append(resp.Opportunities, toOpportunityResponse(o))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetOpportunityHandler returns one opportunity by public id
func GetOpportunityHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		opportunity, ok := findOpportunity(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, toOpportunityResponse(opportunity))
	}
}

// UpdateOpportunityHandler updates the status and notes of an opportunity
func UpdateOpportunityHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body OpportunityUpdate
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if body.Status != nil && !models.ValidStatus(*body.Status) {
			badRequest(c, models.ErrInvalidStatus.Error())
			return
		}

		opportunity, ok := findOpportunity(c, db)
		if !ok {
			return
		}

		updates := map[string]interface{}{}
		if body.Status != nil {
			updates["status"] = *body.Status
		}
		if body.UserNotes != nil {
			updates["user_notes"] = *body.UserNotes
		}

		if len(updates) > 0 {
			if err := db.WithContext(c.Request.Context()).Model(&opportunity).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update opportunity"})
				return
			}
		}

		c.JSON(http.StatusOK, toOpportunityResponse(opportunity))
	}
}

func findOpportunity(c *gin.Context, db *gorm.DB) (models.Opportunity, bool) {
	var opportunity models.Opportunity
	err := db.WithContext(c.Request.Context()).Where("public_id = ?", c.Param("public_id")).First(&opportunity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
		return opportunity, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load opportunity"})
		return opportunity, false
	}
	return opportunity, true
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
