package api

import (
	"context"
	"time"

	"pantry-planner/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLogger logs each request and records it in the metrics store.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)

		if s.metrics != nil {
			m := metrics.RequestMetric{
				Route:     route,
				Method:    c.Request.Method,
				Status:    status,
				LatencyMS: latency.Milliseconds(),
				Timestamp: start.UTC(),
			}
			// The request context is done once the handler returns.
			if err := s.metrics.Record(context.Background(), m); err != nil {
				s.logger.Warn("failed to record request metric", zap.Error(err))
			}
		}
	}
}
