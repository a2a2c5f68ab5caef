package models

import (
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxEntryModel backs the outbox_events table. Lease and reconciliation
// events land here in the same transaction as the aggregate save; the poller
// reads them back by (status, created_at).
type OutboxEntryModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string              `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	AggregateType string              `gorm:"type:varchar(255);not null"`
	Payload       []byte              `gorm:"type:jsonb;not null"`
	Status        shared.OutboxStatus `gorm:"type:varchar(20);default:PENDING;index:idx_outbox_status_created,priority:1"`
	RetryCount    int                 `gorm:"default:0"`
	MaxRetries    int                 `gorm:"default:5"`
	LastError     string              `gorm:"type:text"`
	NextRetryAt   *time.Time          `gorm:"index:idx_outbox_next_retry"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;default:now();index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time `gorm:"not null;default:now()"`
}

func (OutboxEntryModel) TableName() string {
	return "outbox_events"
}

// ToDomain maps the row back to the domain entry.
func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (m *OutboxEntryModel) FromDomain(e *shared.OutboxEntry) {
	m.ID = e.ID
	m.EventID = e.EventID
	m.EventType = e.EventType
	m.AggregateID = e.AggregateID
	m.AggregateType = e.AggregateType
	m.Payload = e.Payload
	m.Status = e.Status
	m.RetryCount = e.RetryCount
	m.MaxRetries = e.MaxRetries
	m.LastError = e.LastError
	m.NextRetryAt = e.NextRetryAt
	m.ProcessedAt = e.ProcessedAt
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	m := &OutboxEntryModel{}
	m.FromDomain(e)
	return m
}
