package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/interfaces/http/dto"
	"github.com/bailflow/core/internal/interfaces/http/middleware"
)

// respondError maps an application error to an HTTP response. Domain errors
// carry their code and details; anything else becomes an opaque 500.
func respondError(c *gin.Context, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		c.JSON(dto.GetHTTPStatus(de.Code),
			dto.NewErrorResponseWithDetails(de.Code, de.Message, de.Details))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
}

// requireActor returns the authenticated actor or writes a 401
func requireActor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
		return shared.Actor{}, false
	}
	return actor, true
}

// parseIDParam parses a UUID path parameter or writes a 400
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid "+name+" parameter"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body or writes a 400
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeBadRequest, err.Error()))
		return false
	}
	return true
}
