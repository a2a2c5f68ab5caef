package event

import (
	"context"
	"errors"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements shared.OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save persists one or more outbox entries
func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entryModels := make([]*models.OutboxEntryModel, len(entries))
	for i := range entries {
		entryModels[i] = models.OutboxEntryModelFromDomain(entries[i])
	}
	return r.db.WithContext(ctx).Create(entryModels).Error
}

// FindPending retrieves pending entries up to the specified limit
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var entryModels []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("status = ?", shared.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindRetryable retrieves failed entries that are due for retry
func (r *GormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var entryModels []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", shared.OutboxStatusFailed, before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindDead retrieves dead letter entries with pagination
func (r *GormOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Where("status = ?", shared.OutboxStatusDead).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entryModels []models.OutboxEntryModel
	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Where("status = ?", shared.OutboxStatusDead).
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainEntries(entryModels), total, nil
}

// FindByID retrieves a single outbox entry by ID
func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var model models.OutboxEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAggregate retrieves entries for a given aggregate, newest first
func (r *GormOutboxRepository) FindByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]*shared.OutboxEntry, error) {
	var entryModels []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("created_at DESC").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// MarkProcessing atomically claims entries and returns them. SKIP LOCKED
// keeps multiple processor instances from double-delivering.
func (r *GormOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var entryModels []models.OutboxEntryModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Options:  "SKIP LOCKED",
			}).
			Where("id IN ? AND status IN ?", ids, []shared.OutboxStatus{
				shared.OutboxStatusPending,
				shared.OutboxStatusFailed,
			}).
			Find(&entryModels).Error; err != nil {
			return err
		}
		if len(entryModels) == 0 {
			return nil
		}

		entryIDs := make([]uuid.UUID, len(entryModels))
		for i := range entryModels {
			entryIDs[i] = entryModels[i].ID
		}

		now := time.Now()
		if err := tx.Model(&models.OutboxEntryModel{}).
			Where("id IN ?", entryIDs).
			Updates(map[string]interface{}{
				"status":     shared.OutboxStatusProcessing,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		for i := range entryModels {
			entryModels[i].Status = shared.OutboxStatusProcessing
			entryModels[i].UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// Update updates an existing outbox entry
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	model := models.OutboxEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteOlderThan deletes sent entries processed before the specified time
func (r *GormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusSent, before).
		Delete(&models.OutboxEntryModel{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns count of entries for each status
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	type statusCount struct {
		Status shared.OutboxStatus
		Count  int64
	}

	var results []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[shared.OutboxStatus]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

func toDomainEntries(entryModels []models.OutboxEntryModel) []*shared.OutboxEntry {
	entries := make([]*shared.OutboxEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormOutboxRepository implements OutboxRepository
var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
