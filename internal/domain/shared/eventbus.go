package shared

import "context"

// EventHandler consumes published domain events, such as the Lease.Activated
// and reconciliation alert events flowing out of the outbox.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. Empty means all.
	EventTypes() []string
}

// EventPublisher pushes events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations. Subscribing without event
// types falls back to the handler's own EventTypes list.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is what the outbox processor publishes through.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// OutboxEventSaver writes domain events to the outbox inside the same
// transaction as the aggregate save. txProvider is the open *gorm.DB
// transaction; repositories pass it through without inspecting it.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
