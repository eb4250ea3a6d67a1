package httpapi

import (
	"time"

	"recruit-automation/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates or assigns a request id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("request", map[string]interface{}{
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"method":    method,
			"path":      path,
			"clientIp":  c.ClientIP(),
			"requestId": c.GetString("requestId"),
		})
	}
}
