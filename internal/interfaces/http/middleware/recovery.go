package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// Recovery converts panics into a 500 response and logs the stack
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
			}
		}()
		c.Next()
	}
}
