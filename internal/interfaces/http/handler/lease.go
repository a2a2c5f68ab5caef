package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	applease "github.com/bailflow/core/internal/application/lease"
	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/interfaces/http/dto"
)

// LeaseHandler exposes the lease lifecycle over HTTP
type LeaseHandler struct {
	leases *applease.Service
	resets *applease.ResetService
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(leases *applease.Service, resets *applease.ResetService) *LeaseHandler {
	return &LeaseHandler{leases: leases, resets: resets}
}

// CreateLeaseRequest is the JSON body for creating a draft lease
type CreateLeaseRequest struct {
	PropertyID    uuid.UUID       `json:"property_id" binding:"required"`
	Type          string          `json:"type" binding:"required"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       *time.Time      `json:"end_date"`
	RentAmount    decimal.Decimal `json:"rent_amount" binding:"required"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
}

// AddSignerRequest is the JSON body for inviting a signer
type AddSignerRequest struct {
	Role      string     `json:"role" binding:"required"`
	Email     string     `json:"email"`
	ProfileID *uuid.UUID `json:"profile_id"`
}

// SignatureRequest is the JSON body carrying a signature proof
type SignatureRequest struct {
	ContentHash    string `json:"content_hash" binding:"required"`
	SignerIdentity string `json:"signer_identity" binding:"required"`
	DeviceMetadata string `json:"device_metadata"`
}

// CreateInspectionRequest is the JSON body for opening an inspection
type CreateInspectionRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SignInspectionRequest is the JSON body for signing an inspection
type SignInspectionRequest struct {
	Role           string `json:"role" binding:"required"`
	ContentHash    string `json:"content_hash" binding:"required"`
	SignerIdentity string `json:"signer_identity" binding:"required"`
}

// ActivateRequest is the JSON body for a manual activation
type ActivateRequest struct {
	Force bool `json:"force"`
}

// ResetRequest is the JSON body for the administrative reset
type ResetRequest struct {
	ResetInspection      bool `json:"reset_inspection"`
	DeleteUnpaidInvoices bool `json:"delete_unpaid_invoices"`
}

// Create handles POST /leases
func (h *LeaseHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req CreateLeaseRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.leases.CreateLease(c.Request.Context(), actor, applease.CreateLeaseRequest{
		PropertyID:    req.PropertyID,
		Type:          lease.LeaseType(req.Type),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		RentAmount:    req.RentAmount,
		DepositAmount: req.DepositAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(result))
}

// Get handles GET /leases/:id
func (h *LeaseHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.leases.GetLease(c.Request.Context(), actor, leaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// AddSigner handles POST /leases/:id/signers
func (h *LeaseHandler) AddSigner(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AddSignerRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.leases.AddSigner(c.Request.Context(), actor, leaseID, applease.AddSignerRequest{
		Role:      lease.SignerRole(req.Role),
		Email:     req.Email,
		ProfileID: req.ProfileID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(result))
}

// RecordSignature handles POST /signers/:id/sign
func (h *LeaseHandler) RecordSignature(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	signerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SignatureRequest
	if !bindJSON(c, &req) {
		return
	}

	proof := lease.SignatureProof{
		ContentHash:    req.ContentHash,
		SignerIdentity: req.SignerIdentity,
		SignedAt:       time.Now(),
		DeviceMetadata: req.DeviceMetadata,
		IPAddress:      c.ClientIP(),
	}
	result, err := h.leases.RecordSignature(c.Request.Context(), actor, signerID, proof)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// CreateInspection handles POST /leases/:id/inspections
func (h *LeaseHandler) CreateInspection(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateInspectionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.leases.CreateInspection(c.Request.Context(), actor, leaseID, lease.InspectionKind(req.Kind))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(result))
}

// SignInspection handles POST /inspections/:id/sign
func (h *LeaseHandler) SignInspection(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	inspectionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SignInspectionRequest
	if !bindJSON(c, &req) {
		return
	}

	proof := lease.SignatureProof{
		ContentHash:    req.ContentHash,
		SignerIdentity: req.SignerIdentity,
		SignedAt:       time.Now(),
		IPAddress:      c.ClientIP(),
	}
	result, err := h.leases.SignInspection(c.Request.Context(), actor, inspectionID, lease.SignerRole(req.Role), proof)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Activate handles POST /leases/:id/activate
func (h *LeaseHandler) Activate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ActivateRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.leases.Activate(c.Request.Context(), actor, leaseID, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Terminate handles POST /leases/:id/terminate
func (h *LeaseHandler) Terminate(c *gin.Context) {
	h.transition(c, h.leases.Terminate)
}

// Archive handles POST /leases/:id/archive
func (h *LeaseHandler) Archive(c *gin.Context) {
	h.transition(c, h.leases.Archive)
}

// MarkSent handles POST /leases/:id/send
func (h *LeaseHandler) MarkSent(c *gin.Context) {
	h.transition(c, h.leases.MarkSent)
}

// Reset handles POST /leases/:id/reset
func (h *LeaseHandler) Reset(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ResetRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.resets.Reset(c.Request.Context(), actor, leaseID, applease.ResetOptions{
		ResetInspection:      req.ResetInspection,
		DeleteUnpaidInvoices: req.DeleteUnpaidInvoices,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if !result.Succeeded() {
		// The saga ran to the end but some steps failed
		status = http.StatusMultiStatus
	}
	c.JSON(status, dto.NewSuccessResponse(result))
}

func (h *LeaseHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*applease.LeaseDTO, error),
) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	leaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), actor, leaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
