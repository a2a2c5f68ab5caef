package models

import (
	"time"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaseModel is the persistence model for the lease aggregate
type LeaseModel struct {
	AggregateModel
	OwnerID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	PropertyID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type          lease.LeaseType   `gorm:"type:varchar(20);not null"`
	Status        lease.LeaseStatus `gorm:"type:varchar(30);not null;index"`
	StartDate     time.Time         `gorm:"not null"`
	EndDate       *time.Time
	RentAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SealedAt      *time.Time
	SealedDocKey  string `gorm:"type:varchar(512)"`
	ActivatedAt   *time.Time
	TerminatedAt  *time.Time
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the persistence model to a domain Lease
func (m *LeaseModel) ToDomain() *lease.Lease {
	l := &lease.Lease{
		OwnerID:       m.OwnerID,
		PropertyID:    m.PropertyID,
		Type:          m.Type,
		Status:        m.Status,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		RentAmount:    m.RentAmount,
		DepositAmount: m.DepositAmount,
		SealedAt:      m.SealedAt,
		SealedDocKey:  m.SealedDocKey,
		ActivatedAt:   m.ActivatedAt,
		TerminatedAt:  m.TerminatedAt,
	}
	m.PopulateAggregateRoot(&l.BaseAggregateRoot)
	return l
}

// LeaseModelFromDomain creates a persistence model from a domain Lease
func LeaseModelFromDomain(l *lease.Lease) *LeaseModel {
	m := &LeaseModel{
		OwnerID:       l.OwnerID,
		PropertyID:    l.PropertyID,
		Type:          l.Type,
		Status:        l.Status,
		StartDate:     l.StartDate,
		EndDate:       l.EndDate,
		RentAmount:    l.RentAmount,
		DepositAmount: l.DepositAmount,
		SealedAt:      l.SealedAt,
		SealedDocKey:  l.SealedDocKey,
		ActivatedAt:   l.ActivatedAt,
		TerminatedAt:  l.TerminatedAt,
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return m
}

// SignerModel is the persistence model for lease signers
type SignerModel struct {
	BaseModel
	LeaseID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	Role              lease.SignerRole     `gorm:"type:varchar(20);not null"`
	Status            lease.SignerStatus   `gorm:"type:varchar(10);not null"`
	Email             string               `gorm:"type:varchar(255);index"`
	ProfileID         *uuid.UUID           `gorm:"type:uuid;index"`
	SignedAt          *time.Time
	Proof             lease.SignatureProof `gorm:"type:jsonb"`
	InvitationToken   string               `gorm:"type:varchar(64);uniqueIndex"`
	SignatureImageKey string               `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (SignerModel) TableName() string {
	return "lease_signers"
}

// ToDomain converts the persistence model to a domain Signer
func (m *SignerModel) ToDomain() *lease.Signer {
	return &lease.Signer{
		BaseEntity:        m.BaseModel.ToDomain(),
		LeaseID:           m.LeaseID,
		Role:              m.Role,
		Status:            m.Status,
		Email:             m.Email,
		ProfileID:         m.ProfileID,
		SignedAt:          m.SignedAt,
		Proof:             m.Proof,
		InvitationToken:   m.InvitationToken,
		SignatureImageKey: m.SignatureImageKey,
	}
}

// SignerModelFromDomain creates a persistence model from a domain Signer
func SignerModelFromDomain(s *lease.Signer) *SignerModel {
	m := &SignerModel{
		LeaseID:           s.LeaseID,
		Role:              s.Role,
		Status:            s.Status,
		Email:             s.Email,
		ProfileID:         s.ProfileID,
		SignedAt:          s.SignedAt,
		Proof:             s.Proof,
		InvitationToken:   s.InvitationToken,
		SignatureImageKey: s.SignatureImageKey,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// InspectionModel is the persistence model for property-condition inspections
type InspectionModel struct {
	AggregateModel
	LeaseID       uuid.UUID                  `gorm:"type:uuid;not null;index:idx_inspections_lease_kind,priority:1"`
	Kind          lease.InspectionKind       `gorm:"type:varchar(10);not null;index:idx_inspections_lease_kind,priority:2"`
	Status        lease.InspectionStatus     `gorm:"type:varchar(20);not null"`
	CompletedDate *time.Time
	Signatures    lease.InspectionSignatures `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (InspectionModel) TableName() string {
	return "inspections"
}

// ToDomain converts the persistence model to a domain Inspection
func (m *InspectionModel) ToDomain() *lease.Inspection {
	i := &lease.Inspection{
		LeaseID:       m.LeaseID,
		Kind:          m.Kind,
		Status:        m.Status,
		CompletedDate: m.CompletedDate,
		Signatures:    m.Signatures,
	}
	m.PopulateAggregateRoot(&i.BaseAggregateRoot)
	return i
}

// InspectionModelFromDomain creates a persistence model from a domain Inspection
func InspectionModelFromDomain(i *lease.Inspection) *InspectionModel {
	m := &InspectionModel{
		LeaseID:       i.LeaseID,
		Kind:          i.Kind,
		Status:        i.Status,
		CompletedDate: i.CompletedDate,
		Signatures:    i.Signatures,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
