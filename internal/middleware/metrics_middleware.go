package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceylontrails/tourism-backend/internal/metrics"
)

// MetricsMiddleware records per-route request durations. The route
// template is used rather than the raw path so IDs do not explode the
// label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			// unmatched route
			endpoint = "unknown"
		}
		metrics.ObserveRequestDuration(c.Request.Method+" "+endpoint, time.Since(start).Seconds())
	}
}
