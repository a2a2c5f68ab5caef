package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appreconciliation "github.com/bailflow/core/internal/application/reconciliation"
	"github.com/bailflow/core/internal/domain/reconciliation"
	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// ReconciliationHandler exposes the consistency engine to administrators
type ReconciliationHandler struct {
	engine *appreconciliation.Engine
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(engine *appreconciliation.Engine) *ReconciliationHandler {
	return &ReconciliationHandler{engine: engine}
}

// RunResponse is the outward representation of a reconciliation run
type RunResponse struct {
	ID         string                       `json:"id"`
	StartedAt  time.Time                    `json:"started_at"`
	FinishedAt time.Time                    `json:"finished_at"`
	DurationMs int64                        `json:"duration_ms"`
	Status     reconciliation.RunStatus     `json:"status"`
	Overall    reconciliation.Severity      `json:"overall"`
	Results    reconciliation.CheckResults  `json:"results"`
}

// TriggerRun handles POST /admin/reconciliation/runs
func (h *ReconciliationHandler) TriggerRun(c *gin.Context) {
	run, err := h.engine.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(toRunResponse(run)))
}

// GetLatestRun handles GET /admin/reconciliation/runs/latest
func (h *ReconciliationHandler) GetLatestRun(c *gin.Context) {
	run, err := h.engine.GetLatestRun(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(toRunResponse(run)))
}

func toRunResponse(run *reconciliation.Run) *RunResponse {
	return &RunResponse{
		ID:         run.ID.String(),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMs: run.Duration.Milliseconds(),
		Status:     run.Status,
		Overall:    run.Overall,
		Results:    run.Results,
	}
}
