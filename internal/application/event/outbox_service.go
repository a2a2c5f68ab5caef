package event

import (
	"context"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxService exposes the administrative surface of the transactional
// outbox: delivery statistics, dead-letter inspection and requeueing.
type OutboxService struct {
	outbox shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox admin service
func NewOutboxService(outbox shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{outbox: outbox, logger: logger}
}

// OutboxStats summarizes entry counts per delivery status
type OutboxStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
}

// GetStats returns counts per outbox status
func (s *OutboxService) GetStats(ctx context.Context) (*OutboxStats, error) {
	counts, err := s.outbox.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &OutboxStats{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}, nil
}

// GetDeadLetters returns dead-letter entries with pagination
func (s *OutboxService) GetDeadLetters(ctx context.Context, page, pageSize int) (*shared.Paginated[*shared.OutboxEntry], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	entries, total, err := s.outbox.FindDead(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(entries, total, page, pageSize)
	return &result, nil
}

// RetryDeadLetter requeues one dead-letter entry for delivery
func (s *OutboxService) RetryDeadLetter(ctx context.Context, id uuid.UUID) error {
	entry, err := s.outbox.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := entry.ResetForRetry(); err != nil {
		return shared.NewPreconditionError(err.Error()).
			WithDetail("entry_id", id.String()).
			WithDetail("status", string(entry.Status))
	}
	if err := s.outbox.Update(ctx, entry); err != nil {
		return err
	}
	s.logger.Info("dead-letter entry requeued",
		zap.String("entry_id", id.String()),
		zap.String("event_type", entry.EventType))
	return nil
}

// GetEntriesForAggregate returns the outbox history of one aggregate
func (s *OutboxService) GetEntriesForAggregate(ctx context.Context, aggregateID uuid.UUID) ([]*shared.OutboxEntry, error) {
	return s.outbox.FindByAggregate(ctx, aggregateID)
}

// CleanupSent removes sent entries older than the retention window
func (s *OutboxService) CleanupSent(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := s.outbox.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("cleaned up sent outbox entries", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
