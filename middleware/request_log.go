package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eduguide/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := c.GetHeader("X-Request-ID"); id != "" {
			fields = append(fields, "request_id", id)
		}

		switch {
		case status >= 500:
			log.Error("proxied request", fields...)
		case status >= 400:
			log.Warn("proxied request", fields...)
		default:
			log.Info("proxied request", fields...)
		}
	}
}
