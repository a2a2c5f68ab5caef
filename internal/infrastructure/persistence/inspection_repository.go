package persistence

import (
	"context"
	"errors"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInspectionRepository implements lease.InspectionRepository using GORM
type GormInspectionRepository struct {
	db *gorm.DB
}

// NewGormInspectionRepository creates a new GormInspectionRepository
func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

// FindByID finds an inspection by its ID
func (r *GormInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*lease.Inspection, error) {
	var model models.InspectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByLeaseAndKind finds the non-cancelled inspection of the given
// kind for the lease
func (r *GormInspectionRepository) FindActiveByLeaseAndKind(ctx context.Context, leaseID uuid.UUID, kind lease.InspectionKind) (*lease.Inspection, error) {
	var model models.InspectionModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ? AND kind = ? AND status <> ?", leaseID, kind, lease.InspectionStatusCancelled).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an inspection
func (r *GormInspectionRepository) Save(ctx context.Context, i *lease.Inspection) error {
	model := models.InspectionModelFromDomain(i)
	return r.db.WithContext(ctx).Save(model).Error
}
