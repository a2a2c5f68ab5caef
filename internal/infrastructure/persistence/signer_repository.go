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

// GormSignerRepository implements lease.SignerRepository using GORM
type GormSignerRepository struct {
	db *gorm.DB
}

// NewGormSignerRepository creates a new GormSignerRepository
func NewGormSignerRepository(db *gorm.DB) *GormSignerRepository {
	return &GormSignerRepository{db: db}
}

// FindByID finds a signer by its ID
func (r *GormSignerRepository) FindByID(ctx context.Context, id uuid.UUID) (*lease.Signer, error) {
	var model models.SignerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLease finds all signers of a lease, oldest first
func (r *GormSignerRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]lease.Signer, error) {
	var signerModels []models.SignerModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("created_at ASC").
		Find(&signerModels).Error; err != nil {
		return nil, err
	}
	signers := make([]lease.Signer, len(signerModels))
	for i := range signerModels {
		signers[i] = *signerModels[i].ToDomain()
	}
	return signers, nil
}

// Save creates or updates a signer
func (r *GormSignerRepository) Save(ctx context.Context, s *lease.Signer) error {
	model := models.SignerModelFromDomain(s)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll saves a whole signer set in one transaction. The administrative
// reset uses this so the set moves in lockstep.
func (r *GormSignerRepository) SaveAll(ctx context.Context, signers []lease.Signer) error {
	if len(signers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range signers {
			model := models.SignerModelFromDomain(&signers[i])
			if err := tx.Save(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
