package billing

import (
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the confirmation status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment is a confirmed or attempted settlement against an invoice.
// InvoiceID is nullable: orphan payments are exactly the confirmed payments
// whose invoice reference is missing.
type Payment struct {
	shared.BaseEntity
	LeaseID     uuid.UUID
	InvoiceID   *uuid.UUID
	Status      PaymentStatus
	Amount      decimal.Decimal
	ConfirmedAt *time.Time
	Reference   string // gateway reference
}

// IsConfirmed returns true for settled payments
func (p *Payment) IsConfirmed() bool {
	return p.Status == PaymentStatusConfirmed
}

// IsOrphan returns true for confirmed payments with no associated invoice
func (p *Payment) IsOrphan() bool {
	return p.IsConfirmed() && p.InvoiceID == nil
}
