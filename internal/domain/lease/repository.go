package lease

import (
	"context"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// LeaseRepository persists Lease aggregates. Save variants that take events
// write them to the outbox in the same transaction as the aggregate.
type LeaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	FindByStatus(ctx context.Context, status LeaseStatus) ([]Lease, error)
	Save(ctx context.Context, l *Lease) error
	// SaveWithEvents saves the lease with optimistic locking and persists the
	// given domain events to the outbox atomically.
	SaveWithEvents(ctx context.Context, l *Lease, events []shared.DomainEvent) error
}

// SignerRepository persists lease signers
type SignerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Signer, error)
	FindByLease(ctx context.Context, leaseID uuid.UUID) ([]Signer, error)
	Save(ctx context.Context, s *Signer) error
	SaveAll(ctx context.Context, signers []Signer) error
}

// InspectionRepository persists property-condition inspections
type InspectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Inspection, error)
	// FindActiveByLeaseAndKind returns the non-cancelled inspection of the
	// given kind for the lease, or shared.ErrNotFound.
	FindActiveByLeaseAndKind(ctx context.Context, leaseID uuid.UUID, kind InspectionKind) (*Inspection, error)
	Save(ctx context.Context, i *Inspection) error
}
