package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/opportunity-finder/internal/worker"
)

// RunTrigger starts a discovery run in the background
type RunTrigger interface {
	TriggerAsync() error
}

// TriggerRunHandler starts a discovery run outside the daily schedule
func TriggerRunHandler(trigger RunTrigger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := trigger.TriggerAsync()
		if errors.Is(err, worker.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "a discovery run is already in progress"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start discovery run"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	}
}
