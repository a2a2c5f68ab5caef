package deposit

import (
	"context"

	"github.com/google/uuid"
)

// OperationRepository persists the append-only deposit ledger. There is no
// update or delete: corrections append compensating operations. The one
// exception is AttachDeductions, which decorates the most recent retention
// with its breakdown after the append has committed.
type OperationRepository interface {
	FindByLease(ctx context.Context, leaseID uuid.UUID) ([]Operation, error)
	Append(ctx context.Context, op *Operation) error
	// AttachDeductionsToLatestRetention sets the deductions breakdown on the
	// most recent retention operation for the lease.
	AttachDeductionsToLatestRetention(ctx context.Context, leaseID uuid.UUID, deductions Deductions) error
}
