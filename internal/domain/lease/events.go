package lease

import (
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type tags consumed by downstream handlers (invoice generation,
// notifications, audit loggers). Payloads are opaque to consumers.
const (
	EventTypeLeaseActivated     = "Lease.Activated"
	EventTypeLeaseFullySigned   = "Lease.FullySigned"
	EventTypeLeaseSealed        = "Lease.Sealed"
	EventTypeLeaseTerminated    = "Lease.Terminated"
	EventTypeLeaseReset         = "Lease.Reset"
	EventTypeKeyHandoverCreated = "KeyHandover.Created"
)

const aggregateTypeLease = "Lease"

// LeaseActivatedEvent is raised when a lease enters occupancy. Forced records
// whether the qualifying-inspection requirement was overridden.
type LeaseActivatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID       `json:"lease_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	StartDate   time.Time       `json:"start_date"`
	RentAmount  decimal.Decimal `json:"rent_amount"`
	ActivatedAt time.Time       `json:"activated_at"`
	Forced      bool            `json:"forced"`
}

// NewLeaseActivatedEvent creates a new LeaseActivatedEvent
func NewLeaseActivatedEvent(l *Lease, forced bool) *LeaseActivatedEvent {
	activatedAt := time.Now()
	if l.ActivatedAt != nil {
		activatedAt = *l.ActivatedAt
	}
	return &LeaseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseActivated, aggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		OwnerID:         l.OwnerID,
		StartDate:       l.StartDate,
		RentAmount:      l.RentAmount,
		ActivatedAt:     activatedAt,
		Forced:          forced,
	}
}

// LeaseFullySignedEvent is raised when every signer of a lease has signed
type LeaseFullySignedEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID `json:"lease_id"`
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// NewLeaseFullySignedEvent creates a new LeaseFullySignedEvent
func NewLeaseFullySignedEvent(l *Lease) *LeaseFullySignedEvent {
	return &LeaseFullySignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseFullySigned, aggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		OwnerID:         l.OwnerID,
	}
}

// LeaseSealedEvent is raised once the contractual content is frozen and the
// signed-document artifact stored.
type LeaseSealedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID `json:"lease_id"`
	ArtifactKey string    `json:"artifact_key"`
	SealedAt    time.Time `json:"sealed_at"`
}

// NewLeaseSealedEvent creates a new LeaseSealedEvent
func NewLeaseSealedEvent(l *Lease) *LeaseSealedEvent {
	sealedAt := time.Now()
	if l.SealedAt != nil {
		sealedAt = *l.SealedAt
	}
	return &LeaseSealedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseSealed, aggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		ArtifactKey:     l.SealedDocKey,
		SealedAt:        sealedAt,
	}
}

// LeaseTerminatedEvent is raised when an active lease ends
type LeaseTerminatedEvent struct {
	shared.BaseDomainEvent
	LeaseID      uuid.UUID `json:"lease_id"`
	PropertyID   uuid.UUID `json:"property_id"`
	TerminatedAt time.Time `json:"terminated_at"`
}

// NewLeaseTerminatedEvent creates a new LeaseTerminatedEvent
func NewLeaseTerminatedEvent(l *Lease) *LeaseTerminatedEvent {
	terminatedAt := time.Now()
	if l.TerminatedAt != nil {
		terminatedAt = *l.TerminatedAt
	}
	return &LeaseTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseTerminated, aggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TerminatedAt:    terminatedAt,
	}
}

// LeaseResetEvent is raised when the administrative reset reverts a lease
type LeaseResetEvent struct {
	shared.BaseDomainEvent
	LeaseID uuid.UUID `json:"lease_id"`
}

// NewLeaseResetEvent creates a new LeaseResetEvent
func NewLeaseResetEvent(l *Lease) *LeaseResetEvent {
	return &LeaseResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseReset, aggregateTypeLease, l.ID),
		LeaseID:         l.ID,
	}
}

// KeyHandoverCreatedEvent is raised at activation so downstream consumers can
// open the key-handover record for the property.
type KeyHandoverCreatedEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID `json:"lease_id"`
	PropertyID uuid.UUID `json:"property_id"`
}

// NewKeyHandoverCreatedEvent creates a new KeyHandoverCreatedEvent
func NewKeyHandoverCreatedEvent(l *Lease) *KeyHandoverCreatedEvent {
	return &KeyHandoverCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeKeyHandoverCreated, aggregateTypeLease, l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
	}
}
