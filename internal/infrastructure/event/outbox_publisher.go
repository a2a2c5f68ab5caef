package event

import (
	"context"
	"fmt"

	"github.com/bailflow/core/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox table. With a
// transaction it participates in the caller's commit; without one it writes
// through its own connection.
type OutboxPublisher struct {
	db         *gorm.DB
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(db *gorm.DB, serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{db: db, serializer: serializer}
}

// PublishWithTx publishes events to the outbox within the provided transaction
// so events persist atomically with the aggregate changes.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements the shared.OutboxEventSaver interface. A nil
// txProvider writes through the publisher's own connection.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx := p.db
	if txProvider != nil {
		var ok bool
		tx, ok = txProvider.(*gorm.DB)
		if !ok {
			return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
		}
	}
	return p.PublishWithTx(ctx, tx, events...)
}

// Ensure OutboxPublisher implements OutboxEventSaver
var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
