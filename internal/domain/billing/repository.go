package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository reads the invoice ledger and applies the one safe
// auto-repair this core owns: the idempotent sent-to-late promotion.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindPaid(ctx context.Context) ([]Invoice, error)
	FindOpenOlderThan(ctx context.Context, issuedBefore time.Time) ([]Invoice, error)
	// FindUnpaidByLease returns open or draft invoices for a lease; used by
	// the administrative reset to drop invoices from a botched signature flow.
	FindUnpaidByLease(ctx context.Context, leaseID uuid.UUID) ([]Invoice, error)
	// PromoteSentToLate moves every SENT invoice issued before the cutoff to
	// LATE and returns the number of rows changed. The status guard in the
	// query makes re-running the promotion a no-op.
	PromoteSentToLate(ctx context.Context, issuedBefore time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository reads the payment ledger
type PaymentRepository interface {
	FindConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindConfirmed(ctx context.Context) ([]Payment, error)
	FindOrphans(ctx context.Context) ([]Payment, error)
}

// DuplicatePaymentGroup is one cluster of suspected duplicate payments,
// produced by the external aggregation collaborator.
type DuplicatePaymentGroup struct {
	LeaseID    uuid.UUID
	Reference  string
	PaymentIDs []uuid.UUID
}

// DuplicatePaymentDetector is the external aggregation collaborator that
// clusters payments likely to be duplicates.
type DuplicatePaymentDetector interface {
	FindDuplicateGroups(ctx context.Context) ([]DuplicatePaymentGroup, error)
}

// MandateRepository reads recurring-debit authorizations
type MandateRepository interface {
	// FindFailedOnActiveLeases returns mandates in a terminal failure state
	// whose lease is still active.
	FindFailedOnActiveLeases(ctx context.Context) ([]Mandate, error)
}
