package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sasa-yovanovicc/AI-Regulatory-Contract-Sumarizer/pkg/logger"
)

// RequestID assigns each request a unique ID, honoring one supplied by the
// caller, and threads it through the response header and the logger context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID gets the request ID from gin context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		return requestID.(string)
	}
	return ""
}

// DocumentContext copies the :id route parameter into the logger context so
// log lines emitted while serving a document route carry the document ID.
func DocumentContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Param("id"); id != "" {
			ctx := context.WithValue(c.Request.Context(), logger.DocumentIDKey, id)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
