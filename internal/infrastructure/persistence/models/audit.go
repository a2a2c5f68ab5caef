package models

import (
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditRecordModel is the persistence model for the append-only audit trail
type AuditRecordModel struct {
	BaseModel
	ActorID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ActorRole  shared.ActorRole `gorm:"type:varchar(10);not null"`
	Action     string           `gorm:"type:varchar(100);not null;index"`
	EntityType string           `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	Metadata   JSONMap          `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (AuditRecordModel) TableName() string {
	return "audit_records"
}

// AuditRecordModelFromDomain creates a persistence model from a domain AuditRecord
func AuditRecordModelFromDomain(r *shared.AuditRecord) *AuditRecordModel {
	m := &AuditRecordModel{
		ActorID:    r.ActorID,
		ActorRole:  r.ActorRole,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Metadata:   JSONMap(r.Metadata),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
