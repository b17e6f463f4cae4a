package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"collabcore/internal/infrastructure/monitoring"
)

// MetricsMiddleware records request latency per method, route and status.
// Unmatched routes are bucketed together to keep label cardinality bounded.
func MetricsMiddleware(collector *monitoring.PrometheusCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
