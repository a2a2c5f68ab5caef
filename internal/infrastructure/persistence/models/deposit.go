package models

import (
	"time"

	"github.com/bailflow/core/internal/domain/deposit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositOperationModel is the persistence model for deposit ledger entries.
// The table is append-only: rows are inserted, never updated or deleted,
// except for the deductions column on retentions.
type DepositOperationModel struct {
	BaseModel
	LeaseID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Type        deposit.OperationType `gorm:"type:varchar(12);not null"`
	Amount      decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Date        time.Time             `gorm:"not null"`
	Description string                `gorm:"type:text"`
	Deductions  deposit.Deductions    `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (DepositOperationModel) TableName() string {
	return "deposit_operations"
}

// ToDomain converts the persistence model to a domain Operation
func (m *DepositOperationModel) ToDomain() *deposit.Operation {
	return &deposit.Operation{
		BaseEntity:  m.BaseModel.ToDomain(),
		LeaseID:     m.LeaseID,
		Type:        m.Type,
		Amount:      m.Amount,
		Date:        m.Date,
		Description: m.Description,
		Deductions:  m.Deductions,
	}
}

// DepositOperationModelFromDomain creates a persistence model from a domain Operation
func DepositOperationModelFromDomain(op *deposit.Operation) *DepositOperationModel {
	m := &DepositOperationModel{
		LeaseID:     op.LeaseID,
		Type:        op.Type,
		Amount:      op.Amount,
		Date:        op.Date,
		Description: op.Description,
		Deductions:  op.Deductions,
	}
	m.FromDomainBaseEntity(op.BaseEntity)
	return m
}
