package models

import (
	"time"

	"github.com/bailflow/core/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	BaseModel
	LeaseID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Number      string                `gorm:"type:varchar(50);uniqueIndex"`
	Status      billing.InvoiceStatus `gorm:"type:varchar(12);not null;index"`
	TotalAmount decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	IssuedAt    time.Time             `gorm:"not null;index"`
	DueDate     *time.Time
	PaidAt      *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseEntity:  m.BaseModel.ToDomain(),
		LeaseID:     m.LeaseID,
		Number:      m.Number,
		Status:      m.Status,
		TotalAmount: m.TotalAmount,
		IssuedAt:    m.IssuedAt,
		DueDate:     m.DueDate,
		PaidAt:      m.PaidAt,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(i *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		LeaseID:     i.LeaseID,
		Number:      i.Number,
		Status:      i.Status,
		TotalAmount: i.TotalAmount,
		IssuedAt:    i.IssuedAt,
		DueDate:     i.DueDate,
		PaidAt:      i.PaidAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	BaseModel
	LeaseID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID   *uuid.UUID            `gorm:"type:uuid;index"`
	Status      billing.PaymentStatus `gorm:"type:varchar(12);not null;index"`
	Amount      decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	ConfirmedAt *time.Time
	Reference   string `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:  m.BaseModel.ToDomain(),
		LeaseID:     m.LeaseID,
		InvoiceID:   m.InvoiceID,
		Status:      m.Status,
		Amount:      m.Amount,
		ConfirmedAt: m.ConfirmedAt,
		Reference:   m.Reference,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		LeaseID:     p.LeaseID,
		InvoiceID:   p.InvoiceID,
		Status:      p.Status,
		Amount:      p.Amount,
		ConfirmedAt: p.ConfirmedAt,
		Reference:   p.Reference,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// MandateModel is the persistence model for recurring-debit mandates
type MandateModel struct {
	BaseModel
	LeaseID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status    billing.MandateStatus `gorm:"type:varchar(12);not null;index"`
	Reference string                `gorm:"type:varchar(100)"`
	ExpiresAt *time.Time
}

// TableName returns the table name for GORM
func (MandateModel) TableName() string {
	return "mandates"
}

// ToDomain converts the persistence model to a domain Mandate
func (m *MandateModel) ToDomain() *billing.Mandate {
	return &billing.Mandate{
		BaseEntity: m.BaseModel.ToDomain(),
		LeaseID:    m.LeaseID,
		Status:     m.Status,
		Reference:  m.Reference,
		ExpiresAt:  m.ExpiresAt,
	}
}
