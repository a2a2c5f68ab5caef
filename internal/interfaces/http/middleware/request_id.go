package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bailflow/core/internal/infrastructure/logger"
)

// RequestIDHeader is the header carrying the request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, or generates one, and stores
// it in the request context so it reaches the database logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
