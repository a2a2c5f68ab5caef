package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appevent "github.com/bailflow/core/internal/application/event"
	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// OutboxHandler exposes outbox observability and dead-letter recovery
type OutboxHandler struct {
	outbox *appevent.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outbox *appevent.OutboxService) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// GetStats handles GET /admin/outbox/stats
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.outbox.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}

// GetDeadLetters handles GET /admin/outbox/dead-letters
func (h *OutboxHandler) GetDeadLetters(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeBadRequest, err.Error()))
		return
	}
	req.Normalize()

	page, err := h.outbox.GetDeadLetters(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page.Items, page.Total, page.Page, page.PageSize))
}

// RetryDeadLetter handles POST /admin/outbox/dead-letters/:id/retry
func (h *OutboxHandler) RetryDeadLetter(c *gin.Context) {
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.outbox.RetryDeadLetter(c.Request.Context(), entryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"entry_id": entryID}))
}

// GetAggregateEntries handles GET /admin/outbox/aggregates/:id/entries
func (h *OutboxHandler) GetAggregateEntries(c *gin.Context) {
	aggregateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.outbox.GetEntriesForAggregate(c.Request.Context(), aggregateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(entries))
}
