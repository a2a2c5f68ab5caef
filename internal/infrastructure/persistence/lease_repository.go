package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeaseRepository implements lease.LeaseRepository using GORM
type GormLeaseRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormLeaseRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a lease by its ID
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*lease.Lease, error) {
	var model models.LeaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStatus finds all leases in the given status
func (r *GormLeaseRepository) FindByStatus(ctx context.Context, status lease.LeaseStatus) ([]lease.Lease, error) {
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	leases := make([]lease.Lease, len(leaseModels))
	for i := range leaseModels {
		leases[i] = *leaseModels[i].ToDomain()
	}
	return leases, nil
}

// Save creates or updates a lease without event publishing
func (r *GormLeaseRepository) Save(ctx context.Context, l *lease.Lease) error {
	model := models.LeaseModelFromDomain(l)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvents saves the lease with optimistic locking and persists domain
// events to the outbox in the same transaction, so a lease status change and
// the event announcing it commit or roll back together.
func (r *GormLeaseRepository) SaveWithEvents(ctx context.Context, l *lease.Lease, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.LeaseModel{}).
			Where("id = ?", l.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != l.Version {
			return shared.NewConflictError("The lease has been modified by another request").
				WithDetail("expected_version", l.Version).
				WithDetail("current_version", currentVersion)
		}

		l.Version++
		l.UpdatedAt = time.Now()

		result := tx.Model(&models.LeaseModel{}).
			Where("id = ? AND version = ?", l.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":         l.Status,
				"start_date":     l.StartDate,
				"end_date":       l.EndDate,
				"rent_amount":    l.RentAmount,
				"deposit_amount": l.DepositAmount,
				"sealed_at":      l.SealedAt,
				"sealed_doc_key": l.SealedDocKey,
				"activated_at":   l.ActivatedAt,
				"terminated_at":  l.TerminatedAt,
				"version":        l.Version,
				"updated_at":     l.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewConflictError("The lease has been modified by another request")
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return err
			}
		}
		return nil
	})
}
