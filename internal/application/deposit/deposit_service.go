package deposit

import (
	"context"
	"time"

	"github.com/bailflow/core/internal/domain/deposit"
	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeaseLocker serializes deposit appends with the lease's other mutations
type LeaseLocker interface {
	WithLock(ctx context.Context, leaseID uuid.UUID, fn func(ctx context.Context) error) error
}

// AppendOperationRequest carries one deposit ledger entry to append
type AppendOperationRequest struct {
	Type        deposit.OperationType
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Deductions  deposit.Deductions // retention breakdown, optional
}

// OperationDTO is the outward representation of a ledger entry
type OperationDTO struct {
	ID          uuid.UUID              `json:"id"`
	LeaseID     uuid.UUID              `json:"lease_id"`
	Type        deposit.OperationType  `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Date        time.Time              `json:"date"`
	Description string                 `json:"description,omitempty"`
	Deductions  deposit.Deductions     `json:"deductions,omitempty"`
}

// StatusDTO is the derived deposit state, projected from the operation log
type StatusDTO struct {
	LeaseID       uuid.UUID       `json:"lease_id"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Collected     decimal.Decimal `json:"collected"`
	Released      decimal.Decimal `json:"released"`
	Retained      decimal.Decimal `json:"retained"`
	Balance       decimal.Decimal `json:"balance"`
	Status        deposit.Status  `json:"status"`
	Operations    []OperationDTO  `json:"operations"`
}

// Service manages the append-only security-deposit ledger of a lease.
// All writes go through the per-lease lock so the projection each guard
// validates against cannot be stale.
type Service struct {
	operations deposit.OperationRepository
	leases     lease.LeaseRepository
	locker     LeaseLocker
	audit      shared.AuditRepository
	logger     *zap.Logger
}

// NewService creates a new deposit ledger service
func NewService(
	operations deposit.OperationRepository,
	leases lease.LeaseRepository,
	locker LeaseLocker,
	audit shared.AuditRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		operations: operations,
		leases:     leases,
		locker:     locker,
		audit:      audit,
		logger:     logger,
	}
}

// AppendOperation validates and appends one ledger entry. Deduction
// attachment is best-effort: a failure there is logged and the append still
// counts, since the money movement itself has committed.
func (s *Service) AppendOperation(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, req AppendOperationRequest) (*OperationDTO, error) {
	var dto *OperationDTO
	err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
		l, err := s.leases.FindByID(ctx, leaseID)
		if err != nil {
			return err
		}
		if !actor.CanManage(l.OwnerID) {
			return shared.ErrForbidden
		}

		op, err := deposit.NewOperation(leaseID, req.Type, req.Amount, req.Date, req.Description)
		if err != nil {
			return err
		}

		existing, err := s.operations.FindByLease(ctx, leaseID)
		if err != nil {
			return err
		}
		ledger := deposit.Project(existing)
		if err := ledger.Validate(op, l.DepositAmount); err != nil {
			return err
		}

		if err := s.operations.Append(ctx, op); err != nil {
			return err
		}

		if op.Type == deposit.OperationTypeRetention && len(req.Deductions) > 0 {
			if err := s.operations.AttachDeductionsToLatestRetention(ctx, leaseID, req.Deductions); err != nil {
				s.logger.Warn("failed to attach retention deductions",
					zap.String("lease_id", leaseID.String()),
					zap.String("operation_id", op.ID.String()),
					zap.Error(err))
			} else {
				op.Deductions = req.Deductions
			}
		}

		record := shared.NewAuditRecord(actor, "deposit.append_operation", "Lease", leaseID, map[string]any{
			"operation_id": op.ID.String(),
			"type":         string(op.Type),
			"amount":       op.Amount.String(),
		})
		if err := s.audit.Append(ctx, record); err != nil {
			s.logger.Warn("failed to append audit record",
				zap.String("lease_id", leaseID.String()),
				zap.Error(err))
		}

		dto = toOperationDTO(op)
		return nil
	})
	return dto, err
}

// GetDepositStatus projects the operation log into the derived deposit state
func (s *Service) GetDepositStatus(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*StatusDTO, error) {
	l, err := s.leases.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(l.OwnerID) {
		return nil, shared.ErrForbidden
	}

	operations, err := s.operations.FindByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	ledger := deposit.Project(operations)

	dtos := make([]OperationDTO, 0, len(operations))
	for i := range operations {
		dtos = append(dtos, *toOperationDTO(&operations[i]))
	}
	return &StatusDTO{
		LeaseID:       leaseID,
		DepositAmount: l.DepositAmount,
		Collected:     ledger.Collected,
		Released:      ledger.Released,
		Retained:      ledger.Retained,
		Balance:       ledger.Balance(),
		Status:        ledger.Status(),
		Operations:    dtos,
	}, nil
}

func toOperationDTO(op *deposit.Operation) *OperationDTO {
	return &OperationDTO{
		ID:          op.ID,
		LeaseID:     op.LeaseID,
		Type:        op.Type,
		Amount:      op.Amount,
		Date:        op.Date,
		Description: op.Description,
		Deductions:  op.Deductions,
	}
}
