package deposit

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType represents a security-deposit money movement
type OperationType string

const (
	OperationTypeCollection OperationType = "COLLECTION"
	OperationTypeRelease    OperationType = "RELEASE"
	OperationTypeRetention  OperationType = "RETENTION"
)

// IsValid checks if the type is a valid OperationType
func (t OperationType) IsValid() bool {
	switch t {
	case OperationTypeCollection, OperationTypeRelease, OperationTypeRetention:
		return true
	}
	return false
}

// Deduction is one line of a retention breakdown
type Deduction struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Deductions is a retention breakdown stored as JSONB
type Deductions []Deduction

// Value implements driver.Valuer for JSONB storage
func (d Deductions) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB storage
func (d *Deductions) Scan(value interface{}) error {
	if value == nil {
		*d = Deductions{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Deductions: unsupported type")
	}
	if len(bytes) == 0 {
		*d = Deductions{}
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// Total returns the sum of all deduction lines
func (d Deductions) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range d {
		total = total.Add(d[i].Amount)
	}
	return total
}

// Operation is one append-only entry of the deposit ledger. Operations are
// never mutated or deleted; corrections append a compensating operation.
type Operation struct {
	shared.BaseEntity
	LeaseID     uuid.UUID
	Type        OperationType
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Deductions  Deductions // retention breakdown, attached best-effort
}

// NewOperation validates and creates a ledger operation. Balance and cap
// guards run against the existing log in Validate; this constructor only
// checks the operation itself.
func NewOperation(leaseID uuid.UUID, opType OperationType, amount decimal.Decimal, date time.Time, description string) (*Operation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Operation amount must be positive").
			WithDetail("amount", amount.String())
	}
	if !opType.IsValid() {
		return nil, shared.NewValidationError("Unknown deposit operation type").
			WithDetail("type", string(opType))
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Operation{
		BaseEntity:  shared.NewBaseEntity(),
		LeaseID:     leaseID,
		Type:        opType,
		Amount:      amount,
		Date:        date,
		Description: description,
	}, nil
}

// AttachDeductions attaches a retention breakdown to the operation
func (o *Operation) AttachDeductions(deductions Deductions) error {
	if o.Type != OperationTypeRetention {
		return shared.NewPreconditionError("Deductions only apply to retention operations")
	}
	o.Deductions = deductions
	o.UpdatedAt = time.Now()
	return nil
}
