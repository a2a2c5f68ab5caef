package billing

import (
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the billing status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusLate      InvoiceStatus = "LATE"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusLate,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// IsOpen returns true if the invoice still awaits payment
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusLate
}

// Invoice is the billed-amount record. The invoice ledger is owned by the
// billing subsystem; this core consumes it read-mostly. The single write it
// performs is the idempotent sent-to-late promotion during reconciliation.
type Invoice struct {
	shared.BaseEntity
	LeaseID     uuid.UUID
	Number      string
	Status      InvoiceStatus
	TotalAmount decimal.Decimal
	IssuedAt    time.Time
	DueDate     *time.Time
	PaidAt      *time.Time
}

// IsPaid returns true if the invoice is marked paid
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// IsOverdue returns true if the invoice is open and older than the threshold
func (i *Invoice) IsOverdue(now time.Time, threshold time.Duration) bool {
	return i.Status.IsOpen() && now.Sub(i.IssuedAt) > threshold
}
