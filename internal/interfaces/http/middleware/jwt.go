package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/auth"
	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// Auth context keys
const (
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuthMiddleware authenticates requests and stores the resulting actor in
// the gin context. Requests without a valid bearer token are rejected.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		actor, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token validation failed")
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// RequireAdmin rejects requests whose actor is not an administrator
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(shared.CodeForbidden, "Administrator access required"))
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor from the gin context
func GetActor(c *gin.Context) (shared.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return shared.Actor{}, false
	}
	actor, ok := value.(shared.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
