package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shopgraph/internal/platform/ctxutil"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

// AccessLog writes one line per request. Route params (customer_id,
// product_id, category_id) and the limit query are logged by name so a
// slow recommendation can be traced back to the entity it ranked for.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, accessFields(c)...)
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

func accessFields(c *gin.Context) []interface{} {
	out := make([]interface{}, 0, 2*len(c.Params)+2)
	for _, p := range c.Params {
		out = append(out, p.Key, p.Value)
	}
	if limit := c.Query("limit"); limit != "" {
		out = append(out, "limit", limit)
	}
	return out
}
