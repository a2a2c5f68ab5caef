package billing

import (
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// MandateStatus represents the state of a recurring-debit authorization
type MandateStatus string

const (
	MandateStatusPending MandateStatus = "PENDING"
	MandateStatusActive  MandateStatus = "ACTIVE"
	MandateStatusRevoked MandateStatus = "REVOKED"
	MandateStatusExpired MandateStatus = "EXPIRED"
	MandateStatusFailed  MandateStatus = "FAILED"
)

// IsValid checks if the status is a valid MandateStatus
func (s MandateStatus) IsValid() bool {
	switch s {
	case MandateStatusPending, MandateStatusActive, MandateStatusRevoked,
		MandateStatusExpired, MandateStatusFailed:
		return true
	}
	return false
}

// IsTerminalFailure returns true for states where the mandate can no longer
// collect rent and will not recover without tenant action.
func (s MandateStatus) IsTerminalFailure() bool {
	return s == MandateStatusRevoked || s == MandateStatusExpired || s == MandateStatusFailed
}

// Mandate is a recurring-debit authorization tied to a lease
type Mandate struct {
	shared.BaseEntity
	LeaseID   uuid.UUID
	Status    MandateStatus
	Reference string
	ExpiresAt *time.Time
}
