package persistence

import (
	"context"
	"errors"

	"github.com/bailflow/core/internal/domain/deposit"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDepositOperationRepository implements deposit.OperationRepository using
// GORM. The ledger is append-only: this repository never issues UPDATE or
// DELETE on operation rows, except for the deductions column.
type GormDepositOperationRepository struct {
	db *gorm.DB
}

// NewGormDepositOperationRepository creates a new GormDepositOperationRepository
func NewGormDepositOperationRepository(db *gorm.DB) *GormDepositOperationRepository {
	return &GormDepositOperationRepository{db: db}
}

// FindByLease returns the full operation log of a lease, oldest first
func (r *GormDepositOperationRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]deposit.Operation, error) {
	var opModels []models.DepositOperationModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("date ASC, created_at ASC").
		Find(&opModels).Error; err != nil {
		return nil, err
	}
	ops := make([]deposit.Operation, len(opModels))
	for i := range opModels {
		ops[i] = *opModels[i].ToDomain()
	}
	return ops, nil
}

// Append inserts one ledger entry
func (r *GormDepositOperationRepository) Append(ctx context.Context, op *deposit.Operation) error {
	model := models.DepositOperationModelFromDomain(op)
	return r.db.WithContext(ctx).Create(model).Error
}

// AttachDeductionsToLatestRetention sets the deductions breakdown on the most
// recent retention operation for the lease
func (r *GormDepositOperationRepository) AttachDeductionsToLatestRetention(ctx context.Context, leaseID uuid.UUID, deductions deposit.Deductions) error {
	var model models.DepositOperationModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ? AND type = ?", leaseID, deposit.OperationTypeRetention).
		Order("date DESC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.DepositOperationModel{}).
		Where("id = ?", model.ID).
		Update("deductions", deductions).Error
}
