package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/calisthenics-backend/internal/observability"
)

// Metrics records request counts and latency per matched route. Event
// streams are counted once they close but stay out of the in-flight gauge.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		streaming := strings.HasSuffix(route, "/events")
		if !streaming {
			m.ApiInflightInc()
			defer m.ApiInflightDec()
		}
		start := time.Now()
		c.Next()
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
