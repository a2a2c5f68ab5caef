package persistence

import (
	"context"

	"github.com/bailflow/core/internal/domain/billing"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindConfirmedByInvoice returns confirmed payments settled against an invoice
func (r *GormPaymentRepository) FindConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	return r.findWhere(ctx, "invoice_id = ? AND status = ?", invoiceID, billing.PaymentStatusConfirmed)
}

// FindConfirmed returns every confirmed payment
func (r *GormPaymentRepository) FindConfirmed(ctx context.Context) ([]billing.Payment, error) {
	return r.findWhere(ctx, "status = ?", billing.PaymentStatusConfirmed)
}

// FindOrphans returns confirmed payments with no invoice reference
func (r *GormPaymentRepository) FindOrphans(ctx context.Context) ([]billing.Payment, error) {
	return r.findWhere(ctx, "status = ? AND invoice_id IS NULL", billing.PaymentStatusConfirmed)
}

func (r *GormPaymentRepository) findWhere(ctx context.Context, query string, args ...interface{}) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, nil
}

// GormDuplicatePaymentDetector implements billing.DuplicatePaymentDetector by
// grouping confirmed payments on (lease_id, amount, reference) in SQL and
// flagging groups larger than one.
type GormDuplicatePaymentDetector struct {
	db *gorm.DB
}

// NewGormDuplicatePaymentDetector creates a new detector
func NewGormDuplicatePaymentDetector(db *gorm.DB) *GormDuplicatePaymentDetector {
	return &GormDuplicatePaymentDetector{db: db}
}

// FindDuplicateGroups returns clusters of suspected duplicate payments
func (d *GormDuplicatePaymentDetector) FindDuplicateGroups(ctx context.Context) ([]billing.DuplicatePaymentGroup, error) {
	type row struct {
		LeaseID   uuid.UUID
		Reference string
	}
	var rows []row
	if err := d.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("lease_id, reference").
		Where("status = ? AND reference <> ''", billing.PaymentStatusConfirmed).
		Group("lease_id, reference, amount").
		Having("COUNT(*) > 1").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	groups := make([]billing.DuplicatePaymentGroup, 0, len(rows))
	for _, g := range rows {
		var paymentModels []models.PaymentModel
		if err := d.db.WithContext(ctx).
			Where("lease_id = ? AND reference = ? AND status = ?", g.LeaseID, g.Reference, billing.PaymentStatusConfirmed).
			Order("created_at ASC").
			Find(&paymentModels).Error; err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(paymentModels))
		for i := range paymentModels {
			ids[i] = paymentModels[i].ID
		}
		groups = append(groups, billing.DuplicatePaymentGroup{
			LeaseID:    g.LeaseID,
			Reference:  g.Reference,
			PaymentIDs: ids,
		})
	}
	return groups, nil
}

// GormMandateRepository implements billing.MandateRepository using GORM
type GormMandateRepository struct {
	db *gorm.DB
}

// NewGormMandateRepository creates a new GormMandateRepository
func NewGormMandateRepository(db *gorm.DB) *GormMandateRepository {
	return &GormMandateRepository{db: db}
}

// FindFailedOnActiveLeases returns mandates in a terminal failure state whose
// lease is still active
func (r *GormMandateRepository) FindFailedOnActiveLeases(ctx context.Context) ([]billing.Mandate, error) {
	var mandateModels []models.MandateModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN leases ON leases.id = mandates.lease_id").
		Where("mandates.status IN ? AND leases.status = ?",
			[]billing.MandateStatus{billing.MandateStatusRevoked, billing.MandateStatusExpired, billing.MandateStatusFailed},
			"ACTIVE").
		Find(&mandateModels).Error; err != nil {
		return nil, err
	}
	mandates := make([]billing.Mandate, len(mandateModels))
	for i := range mandateModels {
		mandates[i] = *mandateModels[i].ToDomain()
	}
	return mandates, nil
}
