package persistence

import (
	"context"
	"errors"

	"github.com/bailflow/core/internal/domain/reconciliation"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRunRepository implements reconciliation.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Save persists a run record
func (r *GormRunRepository) Save(ctx context.Context, run *reconciliation.Run) error {
	model := models.ReconciliationRunModelFromDomain(run)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindLatest returns the most recent run
func (r *GormRunRepository) FindLatest(ctx context.Context) (*reconciliation.Run, error) {
	var model models.ReconciliationRunModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
