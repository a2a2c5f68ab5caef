package lease

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// InspectionKind distinguishes the entry and exit property-condition records
type InspectionKind string

const (
	InspectionKindEntry InspectionKind = "ENTRY"
	InspectionKindExit  InspectionKind = "EXIT"
)

// IsValid checks if the kind is a valid InspectionKind
func (k InspectionKind) IsValid() bool {
	return k == InspectionKindEntry || k == InspectionKindExit
}

// InspectionStatus represents the status of a property-condition inspection
type InspectionStatus string

const (
	InspectionStatusDraft      InspectionStatus = "DRAFT"
	InspectionStatusInProgress InspectionStatus = "IN_PROGRESS"
	InspectionStatusCompleted  InspectionStatus = "COMPLETED"
	InspectionStatusSigned     InspectionStatus = "SIGNED"
	InspectionStatusDisputed   InspectionStatus = "DISPUTED"
	InspectionStatusCancelled  InspectionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InspectionStatus
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusDraft, InspectionStatusInProgress, InspectionStatusCompleted,
		InspectionStatusSigned, InspectionStatusDisputed, InspectionStatusCancelled:
		return true
	}
	return false
}

// CanSign returns true if signatures may still be appended in this status.
// DISPUTED is terminal for automation and requires manual resolution.
func (s InspectionStatus) CanSign() bool {
	switch s {
	case InspectionStatusDraft, InspectionStatusInProgress, InspectionStatusCompleted:
		return true
	}
	return false
}

// InspectionSide identifies which party a signature covers
type InspectionSide string

const (
	InspectionSideOwner  InspectionSide = "OWNER"
	InspectionSideTenant InspectionSide = "TENANT"
)

// IsValid checks if the side is a valid InspectionSide
func (s InspectionSide) IsValid() bool {
	return s == InspectionSideOwner || s == InspectionSideTenant
}

// InspectionSignature records one side's signature with its proof.
// Value object within the Inspection aggregate, stored as JSONB.
type InspectionSignature struct {
	Side     InspectionSide `json:"side"`
	Role     SignerRole     `json:"role"`
	Proof    SignatureProof `json:"proof"`
	SignedAt time.Time      `json:"signed_at"`
}

// InspectionSignatures is a slice of InspectionSignature implementing
// Scanner/Valuer for JSONB storage.
type InspectionSignatures []InspectionSignature

// Value implements driver.Valuer for JSONB storage
func (s InspectionSignatures) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB storage
func (s *InspectionSignatures) Scan(value interface{}) error {
	if value == nil {
		*s = InspectionSignatures{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InspectionSignatures: unsupported type")
	}
	if len(bytes) == 0 {
		*s = InspectionSignatures{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// HasSide reports whether a signature with proof exists for the given side
func (s InspectionSignatures) HasSide(side InspectionSide) bool {
	for i := range s {
		if s[i].Side == side && !s[i].Proof.IsZero() {
			return true
		}
	}
	return false
}

// Inspection is the entry/exit property-condition record (EDL) gating lease
// activation. At most one non-cancelled inspection exists per (lease, kind).
type Inspection struct {
	shared.BaseAggregateRoot
	LeaseID       uuid.UUID
	Kind          InspectionKind
	Status        InspectionStatus
	CompletedDate *time.Time
	Signatures    InspectionSignatures
}

// NewInspection creates a draft inspection for the lease
func NewInspection(leaseID uuid.UUID, kind InspectionKind) (*Inspection, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Unknown inspection kind")
	}
	return &Inspection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeaseID:           leaseID,
		Kind:              kind,
		Status:            InspectionStatusDraft,
		Signatures:        InspectionSignatures{},
	}, nil
}

// IsQualifying reports whether this inspection satisfies the activation gate:
// signed status with both an owner-side and a tenant-side signature recorded.
func (i *Inspection) IsQualifying() bool {
	return i.Kind == InspectionKindEntry &&
		i.Status == InspectionStatusSigned &&
		i.Signatures.HasSide(InspectionSideOwner) &&
		i.Signatures.HasSide(InspectionSideTenant)
}

// Sign appends a signature for the given role's side. Once both sides carry a
// proof, the inspection transitions to SIGNED and the completion date is
// stamped.
func (i *Inspection) Sign(role SignerRole, proof SignatureProof) error {
	if !role.IsValid() {
		return shared.NewValidationError("Unknown signer role")
	}
	if err := proof.Validate(); err != nil {
		return err
	}
	if !i.Status.CanSign() {
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot sign an inspection in %s status", i.Status)).
			WithDetail("current_status", string(i.Status))
	}

	side := role.Side()
	if i.Signatures.HasSide(side) {
		return shared.NewConflictError(
			fmt.Sprintf("Inspection already carries a %s-side signature", side))
	}

	now := time.Now()
	if proof.SignedAt.IsZero() {
		proof.SignedAt = now
	}
	i.Signatures = append(i.Signatures, InspectionSignature{
		Side:     side,
		Role:     role,
		Proof:    proof,
		SignedAt: now,
	})

	if i.Signatures.HasSide(InspectionSideOwner) && i.Signatures.HasSide(InspectionSideTenant) {
		i.Status = InspectionStatusSigned
		i.CompletedDate = &now
	} else if i.Status == InspectionStatusDraft {
		i.Status = InspectionStatusInProgress
	}
	i.UpdatedAt = now
	return nil
}

// Dispute marks the inspection as disputed. Automation never activates a
// lease off a disputed inspection; it requires manual resolution.
func (i *Inspection) Dispute() error {
	if i.Status == InspectionStatusCancelled {
		return shared.NewPreconditionError("Cannot dispute a cancelled inspection")
	}
	i.Status = InspectionStatusDisputed
	i.UpdatedAt = time.Now()
	return nil
}

// Resolve returns a disputed inspection to its pre-dispute state for manual follow-up
func (i *Inspection) Resolve(to InspectionStatus) error {
	if i.Status != InspectionStatusDisputed {
		return shared.NewPreconditionError("Only disputed inspections can be resolved")
	}
	if to != InspectionStatusCompleted && to != InspectionStatusSigned {
		return shared.NewValidationError("Disputes resolve to COMPLETED or SIGNED only")
	}
	i.Status = to
	i.UpdatedAt = time.Now()
	return nil
}

// Cancel voids the inspection, freeing the (lease, kind) slot
func (i *Inspection) Cancel() error {
	if i.Status == InspectionStatusSigned {
		return shared.NewPreconditionError("Cannot cancel a signed inspection")
	}
	i.Status = InspectionStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// ResetToDraft clears signatures and completion as part of the administrative reset
func (i *Inspection) ResetToDraft() {
	i.Status = InspectionStatusDraft
	i.CompletedDate = nil
	i.Signatures = InspectionSignatures{}
	i.UpdatedAt = time.Now()
}
