// Package middleware holds the gin middleware chain: request identity,
// logging, panic recovery, metrics, and bearer authentication.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/embedpro/pids-licensing/internal/application/dto"
	"github.com/embedpro/pids-licensing/internal/infrastructure/monitoring"
	"github.com/embedpro/pids-licensing/pkg/constants"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation ID, honoring one supplied by
// the caller, and plants it in both the response header and the request
// context for the logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger emits one structured entry per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error(c.Request.Context(), "request failed", nil, fields...)
			return
		}
		log.Info(c.Request.Context(), "request handled", fields...)
	}
}

// Recovery converts panics into the standard internal-error envelope.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered", nil,
					logger.Any("panic", r),
					logger.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.Fail(apperrors.ErrInternal("Server error. Try again later.")))
			}
		}()
		c.Next()
	}
}

// Metrics records request counts and latency per route.
func Metrics(m *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
