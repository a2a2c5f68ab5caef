package lease

import (
	"fmt"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaseStatus represents the lifecycle status of a lease
type LeaseStatus string

const (
	LeaseStatusDraft            LeaseStatus = "DRAFT"
	LeaseStatusPendingSignature LeaseStatus = "PENDING_SIGNATURE"
	LeaseStatusPartiallySigned  LeaseStatus = "PARTIALLY_SIGNED"
	LeaseStatusFullySigned      LeaseStatus = "FULLY_SIGNED"
	LeaseStatusSent             LeaseStatus = "SENT" // bail dispatched but unsigned
	LeaseStatusActive           LeaseStatus = "ACTIVE"
	LeaseStatusTerminated       LeaseStatus = "TERMINATED"
	LeaseStatusArchived         LeaseStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusPendingSignature, LeaseStatusPartiallySigned,
		LeaseStatusFullySigned, LeaseStatusSent, LeaseStatusActive,
		LeaseStatusTerminated, LeaseStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

// IsPreActive returns true for every status a lease can hold before activation
func (s LeaseStatus) IsPreActive() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusPendingSignature, LeaseStatusPartiallySigned,
		LeaseStatusFullySigned, LeaseStatusSent:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are permitted
func (s LeaseStatus) IsTerminal() bool {
	return s == LeaseStatusArchived
}

// CanAddSigner returns true if signers may still be invited in this status
func (s LeaseStatus) CanAddSigner() bool {
	return s == LeaseStatusDraft || s == LeaseStatusPendingSignature
}

// LeaseType represents the contractual regime of a lease
type LeaseType string

const (
	LeaseTypeUnfurnished LeaseType = "UNFURNISHED"
	LeaseTypeFurnished   LeaseType = "FURNISHED"
	LeaseTypeCommercial  LeaseType = "COMMERCIAL"
)

// IsValid checks if the lease type is valid
func (t LeaseType) IsValid() bool {
	switch t {
	case LeaseTypeUnfurnished, LeaseTypeFurnished, LeaseTypeCommercial:
		return true
	}
	return false
}

// Lease is the rental-contract aggregate root. Its status only changes
// through the transition methods below; contractual content is frozen once
// the lease is sealed.
type Lease struct {
	shared.BaseAggregateRoot
	OwnerID       uuid.UUID // managing party (owner/agency)
	PropertyID    uuid.UUID
	Type          LeaseType
	Status        LeaseStatus
	StartDate     time.Time
	EndDate       *time.Time
	RentAmount    decimal.Decimal
	DepositAmount decimal.Decimal
	SealedAt      *time.Time
	SealedDocKey  string // artifact reference of the immutable signed document
	ActivatedAt   *time.Time
	TerminatedAt  *time.Time
}

// NewLease creates a new lease in DRAFT status
func NewLease(
	ownerID, propertyID uuid.UUID,
	leaseType LeaseType,
	startDate time.Time,
	endDate *time.Time,
	rentAmount, depositAmount decimal.Decimal,
) (*Lease, error) {
	if !leaseType.IsValid() {
		return nil, shared.NewValidationError("Unknown lease type")
	}
	if rentAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Rent amount must be positive")
	}
	if depositAmount.IsNegative() {
		return nil, shared.NewValidationError("Deposit amount cannot be negative")
	}
	if endDate != nil && !endDate.After(startDate) {
		return nil, shared.NewValidationError("End date must be after start date")
	}

	return &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		PropertyID:        propertyID,
		Type:              leaseType,
		Status:            LeaseStatusDraft,
		StartDate:         startDate,
		EndDate:           endDate,
		RentAmount:        rentAmount,
		DepositAmount:     depositAmount,
	}, nil
}

// IsSealed returns true once the contractual content has been frozen
func (l *Lease) IsSealed() bool {
	return l.SealedAt != nil
}

// EnsureMutable returns an error if the contractual content can no longer change
func (l *Lease) EnsureMutable() error {
	if l.IsSealed() {
		return shared.NewPreconditionError("Lease content is sealed and immutable")
	}
	return nil
}

// MarkPendingSignature moves the lease out of DRAFT when the first signer is added
func (l *Lease) MarkPendingSignature() error {
	if l.Status != LeaseStatusDraft {
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot move to PENDING_SIGNATURE from %s", l.Status)).
			WithDetail("current_status", l.Status.String())
	}
	l.Status = LeaseStatusPendingSignature
	l.UpdatedAt = time.Now()
	return nil
}

// MarkPartiallySigned records that at least one but not all signers have signed
func (l *Lease) MarkPartiallySigned() error {
	if l.Status != LeaseStatusPendingSignature && l.Status != LeaseStatusSent {
		if l.Status == LeaseStatusPartiallySigned {
			return nil
		}
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot move to PARTIALLY_SIGNED from %s", l.Status)).
			WithDetail("current_status", l.Status.String())
	}
	l.Status = LeaseStatusPartiallySigned
	l.UpdatedAt = time.Now()
	return nil
}

// MarkFullySigned records that every signer has signed. The caller is
// responsible for verifying the signer set; sealing happens separately.
func (l *Lease) MarkFullySigned() error {
	switch l.Status {
	case LeaseStatusPendingSignature, LeaseStatusPartiallySigned, LeaseStatusSent:
	case LeaseStatusFullySigned:
		return nil
	default:
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot move to FULLY_SIGNED from %s", l.Status)).
			WithDetail("current_status", l.Status.String())
	}
	l.Status = LeaseStatusFullySigned
	l.UpdatedAt = time.Now()
	l.AddDomainEvent(NewLeaseFullySignedEvent(l))
	return nil
}

// Seal freezes the contractual content and records the signed-document artifact
func (l *Lease) Seal(artifactKey string) error {
	if l.Status != LeaseStatusFullySigned {
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot seal a lease in %s status", l.Status)).
			WithDetail("current_status", l.Status.String()).
			WithDetail("required_status", LeaseStatusFullySigned.String())
	}
	if l.IsSealed() {
		return nil
	}
	if artifactKey == "" {
		return shared.NewValidationError("Sealed document artifact key is required")
	}
	now := time.Now()
	l.SealedAt = &now
	l.SealedDocKey = artifactKey
	l.UpdatedAt = now
	l.AddDomainEvent(NewLeaseSealedEvent(l))
	return nil
}

// ActivationWarning is a non-blocking advisory returned by Activate
type ActivationWarning string

// Activate moves the lease into occupancy. It returns activated=false with a
// nil error when the lease is already active, so duplicate activation
// attempts are no-op successes and never re-emit the activation event.
func (l *Lease) Activate(forced bool) (activated bool, warning ActivationWarning, err error) {
	if l.Status == LeaseStatusActive {
		return false, "", nil
	}
	if l.Status != LeaseStatusFullySigned {
		return false, "", shared.NewPreconditionError(
			fmt.Sprintf("Cannot activate a lease in %s status", l.Status)).
			WithDetail("current_status", l.Status.String()).
			WithDetail("required_status", LeaseStatusFullySigned.String())
	}

	now := time.Now()
	if l.StartDate.After(now) {
		warning = ActivationWarning(
			fmt.Sprintf("Lease start date %s is in the future", l.StartDate.Format("2006-01-02")))
	}

	l.Status = LeaseStatusActive
	l.ActivatedAt = &now
	l.UpdatedAt = now
	l.AddDomainEvent(NewLeaseActivatedEvent(l, forced))
	l.AddDomainEvent(NewKeyHandoverCreatedEvent(l))
	return true, warning, nil
}

// Terminate ends an active lease and stamps terminated_at
func (l *Lease) Terminate() error {
	if l.Status != LeaseStatusActive {
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot terminate a lease in %s status", l.Status)).
			WithDetail("current_status", l.Status.String()).
			WithDetail("required_status", LeaseStatusActive.String())
	}
	now := time.Now()
	l.Status = LeaseStatusTerminated
	l.TerminatedAt = &now
	l.UpdatedAt = now
	l.AddDomainEvent(NewLeaseTerminatedEvent(l))
	return nil
}

// Archive moves any non-active lease to the terminal ARCHIVED status
func (l *Lease) Archive() error {
	if l.Status == LeaseStatusActive {
		return shared.NewPreconditionError("Cannot archive an active lease").
			WithDetail("current_status", l.Status.String())
	}
	if l.Status == LeaseStatusArchived {
		return nil
	}
	l.Status = LeaseStatusArchived
	l.UpdatedAt = time.Now()
	return nil
}

// MarkSent records that the bail was dispatched but remains unsigned
func (l *Lease) MarkSent() error {
	if !l.Status.IsPreActive() {
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot mark a lease in %s status as sent", l.Status)).
			WithDetail("current_status", l.Status.String())
	}
	l.Status = LeaseStatusSent
	l.UpdatedAt = time.Now()
	return nil
}

// ResetToPendingSignature reverts a pre-active lease for a fresh signature
// round. The seal and its artifact reference are cleared; the stored artifact
// is removed by the reset saga, best-effort.
func (l *Lease) ResetToPendingSignature() error {
	if !l.Status.IsPreActive() {
		return shared.NewPreconditionError(
			fmt.Sprintf("Cannot reset a lease in %s status", l.Status)).
			WithDetail("current_status", l.Status.String())
	}
	l.Status = LeaseStatusPendingSignature
	l.SealedAt = nil
	l.SealedDocKey = ""
	l.UpdatedAt = time.Now()
	l.AddDomainEvent(NewLeaseResetEvent(l))
	return nil
}
