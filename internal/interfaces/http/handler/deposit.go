package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appdeposit "github.com/bailflow/core/internal/application/deposit"
	"github.com/bailflow/core/internal/domain/deposit"
	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// DepositHandler exposes the security-deposit ledger over HTTP
type DepositHandler struct {
	deposits *appdeposit.Service
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(deposits *appdeposit.Service) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

// DeductionRequest is one line of a retention breakdown
type DeductionRequest struct {
	Label  string          `json:"label" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AppendOperationRequest is the JSON body for appending a ledger entry
type AppendOperationRequest struct {
	Type        string             `json:"type" binding:"required"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	Date        time.Time          `json:"date"`
	Description string             `json:"description"`
	Deductions  []DeductionRequest `json:"deductions"`
}

// AppendOperation handles POST /leases/:id/deposit/operations
func (h *DepositHandler) AppendOperation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AppendOperationRequest
	if !bindJSON(c, &req) {
		return
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}
	deductions := make(deposit.Deductions, 0, len(req.Deductions))
	for _, d := range req.Deductions {
		deductions = append(deductions, deposit.Deduction{Label: d.Label, Amount: d.Amount})
	}

	result, err := h.deposits.AppendOperation(c.Request.Context(), actor, leaseID, appdeposit.AppendOperationRequest{
		Type:        deposit.OperationType(req.Type),
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		Deductions:  deductions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(result))
}

// GetStatus handles GET /leases/:id/deposit
func (h *DepositHandler) GetStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.deposits.GetDepositStatus(c.Request.Context(), actor, leaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
