package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/embedpro/pids-licensing/pkg/constants"
)

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	redis *goredis.Client
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(redis *goredis.Client) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "degraded",
				"service": constants.ServiceName,
				"store":   "unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": constants.ServiceName,
	})
}
