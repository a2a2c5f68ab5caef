package event

import (
	"context"
	"sync"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxProcessorConfig tunes the poll and cleanup loops.
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// OutboxProcessor polls outbox_events for pending and retryable entries,
// deserializes the stored payloads and publishes them on the bus. Failures
// back off exponentially until the entry dead-letters; sent entries are
// purged after the retention window.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger,
	}
}

// Start launches the poll loop and, when enabled, the cleanup loop.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.processLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop waits for in-flight batches to finish, bounded by ctx.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) processLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) {
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find pending entries", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		p.processEntries(ctx, pending)
	}

	retryable, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find retryable entries", zap.Error(err))
		return
	}
	if len(retryable) > 0 {
		p.processEntries(ctx, retryable)
	}
}

func (p *OutboxProcessor) processEntries(ctx context.Context, entries []*shared.OutboxEntry) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	// MarkProcessing claims the batch so a second processor skips it
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("failed to mark entries as processing", zap.Error(err))
		return
	}

	for _, entry := range claimed {
		p.processEntry(ctx, entry)
	}
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry *shared.OutboxEntry) {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		p.failEntry(ctx, entry, err)
		return
	}

	if err := p.eventBus.Publish(ctx, event); err != nil {
		p.failEntry(ctx, entry, err)
		return
	}

	entry.MarkSent()
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to mark entry as sent",
			zap.String("event_id", entry.EventID.String()),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("outbox entry delivered",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
	)
}

func (p *OutboxProcessor) failEntry(ctx context.Context, entry *shared.OutboxEntry, cause error) {
	p.logger.Error("failed to process outbox entry",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.Error(cause),
	)
	entry.MarkFailed(cause.Error())
	if entry.IsDead() {
		p.logger.Warn("event moved to dead letter queue",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.String("aggregate_type", entry.AggregateType),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", entry.LastError),
		)
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to update entry", zap.Error(err))
	}
}

func (p *OutboxProcessor) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to cleanup old entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
