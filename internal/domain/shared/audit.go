package shared

import (
	"context"

	"github.com/google/uuid"
)

// SideEffectOutcome classifies the result of a best-effort side effect
// (notification insert, storage delete, invitation dispatch).
type SideEffectOutcome string

const (
	SideEffectDelivered SideEffectOutcome = "DELIVERED"
	SideEffectDeferred  SideEffectOutcome = "DEFERRED"
	SideEffectFailed    SideEffectOutcome = "FAILED"
)

// IsValid checks if the outcome is a known SideEffectOutcome
func (o SideEffectOutcome) IsValid() bool {
	switch o {
	case SideEffectDelivered, SideEffectDeferred, SideEffectFailed:
		return true
	}
	return false
}

// AuditRecord captures who did what to which entity, with before/after facts.
// Records are append-only and never read back by the core itself.
type AuditRecord struct {
	BaseEntity
	ActorID    uuid.UUID      `json:"actor_id"`
	ActorRole  ActorRole      `json:"actor_role"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewAuditRecord creates an audit record for a state-changing operation
func NewAuditRecord(actor Actor, action, entityType string, entityID uuid.UUID, metadata map[string]any) *AuditRecord {
	return &AuditRecord{
		BaseEntity: NewBaseEntity(),
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
}

// AuditRepository persists audit records
type AuditRepository interface {
	Append(ctx context.Context, record *AuditRecord) error
}
