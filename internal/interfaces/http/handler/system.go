package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bailflow/core/internal/infrastructure/persistence"
	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// SystemHandler exposes health and readiness probes
type SystemHandler struct {
	db        *persistence.Database
	appName   string
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, appName string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		appName:   appName,
		startedAt: time.Now(),
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"app":    h.appName,
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	}))
}

// Ready handles GET /ready; it fails when the database is unreachable
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
			dto.ErrCodeInternal, "Database is unreachable"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ready"}))
}
