package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus tracks an entry through the delivery pipeline: PENDING until
// the poller claims it, PROCESSING while in flight, then SENT, or FAILED with
// a retry schedule until it exhausts into DEAD.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

// Retry defaults applied to new entries. MaxRetries is stored per entry, so
// entries created under different settings keep the cap they were born with.
const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

// OutboxEntry is a serialized domain event awaiting at-least-once delivery.
// Lease transitions and reconciliation alerts write entries in the same
// transaction as their state change; the background processor drives the
// status transitions below.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps an event and its serialized payload as a pending entry.
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanRetry reports whether a failed entry still has retry budget.
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// MarkProcessing claims the entry for delivery. Only pending and failed
// entries can be claimed; a concurrent processor losing this race skips it.
func (e *OutboxEntry) MarkProcessing() error {
	if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
		return errors.New("can only mark pending or failed entries as processing")
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

// MarkSent records a successful delivery.
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a delivery failure and schedules the next attempt with
// doubling backoff (1s, 2s, 4s, ...). The entry dead-letters once the retry
// count reaches its cap.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = time.Now()

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		return
	}
	e.Status = OutboxStatusFailed
	nextRetry := time.Now().Add(DefaultBaseBackoff * time.Duration(1<<uint(e.RetryCount-1)))
	e.NextRetryAt = &nextRetry
}

// ResetForRetry puts a dead-lettered entry back in the queue with a fresh
// retry budget. The admin dead-letter endpoint is the only caller.
func (e *OutboxEntry) ResetForRetry() error {
	if e.Status != OutboxStatusDead {
		return errors.New("can only retry dead letter entries")
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// OutboxRepository is the persistence surface the processor and the admin
// service share.
type OutboxRepository interface {
	// Save persists one or more outbox entries
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// FindPending retrieves pending entries up to the given limit, oldest first
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable retrieves failed entries whose next retry is due
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// FindDead retrieves dead-letter entries with pagination
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	// FindByID retrieves a single entry
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// FindByAggregate retrieves the entries of one aggregate, newest first
	FindByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]*OutboxEntry, error)
	// MarkProcessing atomically claims entries and returns the claimed set
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	// Update persists an entry's status fields after a delivery attempt
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteOlderThan purges sent entries processed before the cutoff
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus returns the entry count per status
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
