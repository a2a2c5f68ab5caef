package lease

import (
	"time"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeaseRequest carries the contractual content of a new draft lease
type CreateLeaseRequest struct {
	PropertyID    uuid.UUID
	Type          lease.LeaseType
	StartDate     time.Time
	EndDate       *time.Time
	RentAmount    decimal.Decimal
	DepositAmount decimal.Decimal
}

// AddSignerRequest identifies the invited party and their role
type AddSignerRequest struct {
	Role      lease.SignerRole
	Email     string
	ProfileID *uuid.UUID
}

// ResetOptions selects the optional sub-steps of the administrative reset
type ResetOptions struct {
	ResetInspection      bool
	DeleteUnpaidInvoices bool
}

// LeaseDTO is the outward representation of a lease
type LeaseDTO struct {
	ID            uuid.UUID        `json:"id"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	PropertyID    uuid.UUID        `json:"property_id"`
	Type          lease.LeaseType  `json:"type"`
	Status        lease.LeaseStatus `json:"status"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	RentAmount    decimal.Decimal  `json:"rent_amount"`
	DepositAmount decimal.Decimal  `json:"deposit_amount"`
	SealedAt      *time.Time       `json:"sealed_at,omitempty"`
	SealedDocKey  string           `json:"sealed_doc_key,omitempty"`
	ActivatedAt   *time.Time       `json:"activated_at,omitempty"`
	TerminatedAt  *time.Time       `json:"terminated_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// SignerDTO is the outward representation of a signer
type SignerDTO struct {
	ID        uuid.UUID          `json:"id"`
	LeaseID   uuid.UUID          `json:"lease_id"`
	Role      lease.SignerRole   `json:"role"`
	Status    lease.SignerStatus `json:"status"`
	Email     string             `json:"email,omitempty"`
	ProfileID *uuid.UUID         `json:"profile_id,omitempty"`
	SignedAt  *time.Time         `json:"signed_at,omitempty"`
}

// InspectionDTO is the outward representation of an inspection
type InspectionDTO struct {
	ID            uuid.UUID               `json:"id"`
	LeaseID       uuid.UUID               `json:"lease_id"`
	Kind          lease.InspectionKind    `json:"kind"`
	Status        lease.InspectionStatus  `json:"status"`
	CompletedDate *time.Time              `json:"completed_date,omitempty"`
	Signatures    int                     `json:"signatures"`
	Qualifying    bool                    `json:"qualifying"`
}

// ActivateResult reports the outcome of an activation attempt
type ActivateResult struct {
	LeaseID       uuid.UUID `json:"lease_id"`
	Activated     bool      `json:"activated"`      // false when the lease was already active
	AlreadyActive bool      `json:"already_active"` // duplicate activation treated as no-op success
	Forced        bool      `json:"forced"`
	Warning       string    `json:"warning,omitempty"` // non-blocking advisory
}

func toLeaseDTO(l *lease.Lease) *LeaseDTO {
	return &LeaseDTO{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		PropertyID:    l.PropertyID,
		Type:          l.Type,
		Status:        l.Status,
		StartDate:     l.StartDate,
		EndDate:       l.EndDate,
		RentAmount:    l.RentAmount,
		DepositAmount: l.DepositAmount,
		SealedAt:      l.SealedAt,
		SealedDocKey:  l.SealedDocKey,
		ActivatedAt:   l.ActivatedAt,
		TerminatedAt:  l.TerminatedAt,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func toSignerDTO(s *lease.Signer) *SignerDTO {
	return &SignerDTO{
		ID:        s.ID,
		LeaseID:   s.LeaseID,
		Role:      s.Role,
		Status:    s.Status,
		Email:     s.Email,
		ProfileID: s.ProfileID,
		SignedAt:  s.SignedAt,
	}
}

func toInspectionDTO(i *lease.Inspection) *InspectionDTO {
	return &InspectionDTO{
		ID:            i.ID,
		LeaseID:       i.LeaseID,
		Kind:          i.Kind,
		Status:        i.Status,
		CompletedDate: i.CompletedDate,
		Signatures:    len(i.Signatures),
		Qualifying:    i.IsQualifying(),
	}
}
