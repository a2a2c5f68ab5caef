package persistence

import (
	"context"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements shared.AuditRepository using GORM.
// The audit trail is insert-only.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts one audit record
func (r *GormAuditRepository) Append(ctx context.Context, record *shared.AuditRecord) error {
	model := models.AuditRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}
