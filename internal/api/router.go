// Package api exposes stored opportunities and reports over HTTP.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/opportunity-finder/internal/database"
	"github.com/jimdaga/opportunity-finder/internal/health"
	"gorm.io/gorm"
)

// NewRouter builds the HTTP router. trigger may be nil, in which case
// manual runs are not exposed.
func NewRouter(db *gorm.DB, trigger RunTrigger, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", gin.WrapF(health.Handler))
	r.GET("/ready", gin.WrapF(health.ReadyHandler(map[string]health.Check{
		"database": func(ctx context.Context) error { return database.Ping(db.WithContext(ctx)) },
	})))

	api := r.Group("/api")
	{
		api.GET("/opportunities", ListOpportunitiesHandler(db))
		api.GET("/opportunities/:public_id", GetOpportunityHandler(db))
		api.PATCH("/opportunities/:public_id", UpdateOpportunityHandler(db))
		api.GET("/reports", ListReportsHandler(db))
		api.GET("/reports/:date", GetReportHandler(db))
		api.GET("/sources", ListSourcesHandler(db))
		api.GET("/analytics", AnalyticsHandler(db))
		if trigger != nil {
			api.POST("/runs", TriggerRunHandler(trigger))
		}
	}

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
