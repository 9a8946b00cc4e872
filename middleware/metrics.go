package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"hotel-management/observability"
)

// Metrics records request counts and latency by route pattern.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
