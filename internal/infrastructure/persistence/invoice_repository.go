package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bailflow/core/internal/domain/billing"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPaid returns all invoices marked paid
func (r *GormInvoiceRepository) FindPaid(ctx context.Context) ([]billing.Invoice, error) {
	return r.findWhere(ctx, "status = ?", billing.InvoiceStatusPaid)
}

// FindOpenOlderThan returns open invoices issued before the cutoff
func (r *GormInvoiceRepository) FindOpenOlderThan(ctx context.Context, issuedBefore time.Time) ([]billing.Invoice, error) {
	return r.findWhere(ctx, "status IN ? AND issued_at < ?",
		[]billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusLate}, issuedBefore)
}

// FindUnpaidByLease returns open or draft invoices for a lease
func (r *GormInvoiceRepository) FindUnpaidByLease(ctx context.Context, leaseID uuid.UUID) ([]billing.Invoice, error) {
	return r.findWhere(ctx, "lease_id = ? AND status IN ?", leaseID,
		[]billing.InvoiceStatus{billing.InvoiceStatusDraft, billing.InvoiceStatusSent, billing.InvoiceStatusLate})
}

// PromoteSentToLate moves every SENT invoice issued before the cutoff to
// LATE. The status guard in the WHERE clause makes re-runs no-ops.
func (r *GormInvoiceRepository) PromoteSentToLate(ctx context.Context, issuedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("status = ? AND issued_at < ?", billing.InvoiceStatusSent, issuedBefore).
		Updates(map[string]interface{}{
			"status":     billing.InvoiceStatusLate,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Delete removes an invoice. Used only by the administrative reset on
// unpaid invoices.
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id).Error
}

func (r *GormInvoiceRepository) findWhere(ctx context.Context, query string, args ...interface{}) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("issued_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}
