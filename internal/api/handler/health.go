package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/pricewatch/internal/cache"
)

// HealthResponse is the body of GET /api/v1/health
type HealthResponse struct {
	Status   string      `json:"status"`
	Uptime   string      `json:"uptime"`
	Version  string      `json:"version"`
	Renderer string      `json:"renderer"`
	Cache    cache.Stats `json:"cache"`
}

// StatsProvider reports cache usage
type StatsProvider interface {
	Stats() cache.Stats
}

// Health returns a handler for GET /api/v1/health.
func Health(version, renderer string, stats StatsProvider, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:   "healthy",
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Version:  version,
			Renderer: renderer,
			Cache:    stats.Stats(),
		})
	}
}
