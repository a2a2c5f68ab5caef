package lease

import (
	"context"
	"fmt"

	"github.com/bailflow/core/internal/domain/billing"
	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StepResult records the outcome of one reset step. The saga runs every
// step regardless of earlier failures, so the caller always gets the full
// picture of what was and was not undone.
type StepResult struct {
	Step    string `json:"step"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// ResetResult is the aggregate outcome of an administrative reset
type ResetResult struct {
	LeaseID uuid.UUID    `json:"lease_id"`
	Status  string       `json:"status"`
	Steps   []StepResult `json:"steps"`
}

// Succeeded reports whether every executed step completed
func (r *ResetResult) Succeeded() bool {
	for i := range r.Steps {
		if !r.Steps[i].Success && !r.Steps[i].Skipped {
			return false
		}
	}
	return true
}

// ResetService runs the administrative lease reset: a saga that reverts the
// lease to PENDING_SIGNATURE and unwinds signatures, stored artifacts,
// optionally the entry inspection and unpaid invoices, then reissues
// invitations. It is deliberately forgiving; a failed step is recorded and
// the saga moves on, leaving the lease in the most-reset state reachable.
type ResetService struct {
	leases      lease.LeaseRepository
	signers     lease.SignerRepository
	inspections lease.InspectionRepository
	invoices    billing.InvoiceRepository
	locker      LeaseLocker
	documents   DocumentService
	invitations InvitationSender
	audit       shared.AuditRepository
	logger      *zap.Logger
}

// NewResetService creates a new reset saga service
func NewResetService(
	leases lease.LeaseRepository,
	signers lease.SignerRepository,
	inspections lease.InspectionRepository,
	invoices billing.InvoiceRepository,
	locker LeaseLocker,
	documents DocumentService,
	invitations InvitationSender,
	audit shared.AuditRepository,
	logger *zap.Logger,
) *ResetService {
	return &ResetService{
		leases:      leases,
		signers:     signers,
		inspections: inspections,
		invoices:    invoices,
		locker:      locker,
		documents:   documents,
		invitations: invitations,
		audit:       audit,
		logger:      logger,
	}
}

// Reset reverts the lease for a fresh signature round. Only pre-active
// leases are eligible; an active or terminated lease rejects the reset up
// front and no step runs.
func (s *ResetService) Reset(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, opts ResetOptions) (*ResetResult, error) {
	var result *ResetResult
	err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
		l, err := s.leases.FindByID(ctx, leaseID)
		if err != nil {
			return err
		}
		if !actor.CanManage(l.OwnerID) {
			return shared.ErrForbidden
		}
		if !l.Status.IsPreActive() {
			return shared.NewPreconditionError(
				fmt.Sprintf("Cannot reset a lease in %s status", l.Status)).
				WithDetail("current_status", l.Status.String())
		}

		result = s.runSaga(ctx, l, opts)

		s.writeAudit(ctx, actor, l.ID, opts, result)
		return nil
	})
	return result, err
}

// runSaga executes every step in order. Steps never abort the saga: each
// failure is recorded in its StepResult and execution continues.
func (s *ResetService) runSaga(ctx context.Context, l *lease.Lease, opts ResetOptions) *ResetResult {
	result := &ResetResult{LeaseID: l.ID}
	sealedDocKey := l.SealedDocKey

	signers, signersErr := s.signers.FindByLease(ctx, l.ID)

	// Step 1: revert every signer to pending, clearing proofs
	result.record("reset_signers", func() error {
		if signersErr != nil {
			return signersErr
		}
		for i := range signers {
			signers[i].ResetToPending()
		}
		return s.signers.SaveAll(ctx, signers)
	})

	// Step 2: delete stored signature images and the sealed artifact
	result.record("delete_signature_images", func() error {
		if signersErr != nil {
			return signersErr
		}
		var firstErr error
		for i := range signers {
			key := signers[i].SignatureImageKey
			if key == "" {
				continue
			}
			if err := s.documents.Delete(ctx, key); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if sealedDocKey != "" {
			if err := s.documents.Delete(ctx, sealedDocKey); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	// Step 3: revert the lease itself, clearing the seal
	result.record("reset_lease_status", func() error {
		if err := l.ResetToPendingSignature(); err != nil {
			return err
		}
		events := l.GetDomainEvents()
		if err := s.leases.SaveWithEvents(ctx, l, events); err != nil {
			return err
		}
		l.ClearDomainEvents()
		return nil
	})

	// Step 4 (optional): put the entry inspection back to draft
	if opts.ResetInspection {
		result.record("reset_inspection", func() error {
			insp, err := s.inspections.FindActiveByLeaseAndKind(ctx, l.ID, lease.InspectionKindEntry)
			if err != nil {
				if shared.IsCode(err, shared.CodeNotFound) {
					return nil
				}
				return err
			}
			insp.ResetToDraft()
			return s.inspections.Save(ctx, insp)
		})
	} else {
		result.skip("reset_inspection")
	}

	// Step 5 (optional): delete unpaid invoices issued for this lease
	if opts.DeleteUnpaidInvoices {
		result.record("delete_unpaid_invoices", func() error {
			unpaid, err := s.invoices.FindUnpaidByLease(ctx, l.ID)
			if err != nil {
				return err
			}
			var firstErr error
			for i := range unpaid {
				if err := s.invoices.Delete(ctx, unpaid[i].ID); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		})
	} else {
		result.skip("delete_unpaid_invoices")
	}

	// Step 6: reissue invitation tokens and resend invites
	result.record("reissue_invitations", func() error {
		if signersErr != nil {
			return signersErr
		}
		for i := range signers {
			signers[i].ReissueInvitationToken()
		}
		if err := s.signers.SaveAll(ctx, signers); err != nil {
			return err
		}
		for i := range signers {
			if signers[i].HasContact() {
				s.invitations.SendInvitation(ctx, &signers[i])
			}
		}
		return nil
	})

	result.Status = l.Status.String()
	return result
}

func (r *ResetResult) record(step string, fn func() error) {
	if err := fn(); err != nil {
		r.Steps = append(r.Steps, StepResult{Step: step, Success: false, Detail: err.Error()})
		return
	}
	r.Steps = append(r.Steps, StepResult{Step: step, Success: true})
}

func (r *ResetResult) skip(step string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Success: true, Skipped: true})
}

func (s *ResetService) writeAudit(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, opts ResetOptions, result *ResetResult) {
	steps := make(map[string]any, len(result.Steps))
	for i := range result.Steps {
		step := result.Steps[i]
		switch {
		case step.Skipped:
			steps[step.Step] = "skipped"
		case step.Success:
			steps[step.Step] = "ok"
		default:
			steps[step.Step] = step.Detail
		}
	}
	record := shared.NewAuditRecord(actor, "lease.reset", "Lease", leaseID, map[string]any{
		"reset_inspection":       opts.ResetInspection,
		"delete_unpaid_invoices": opts.DeleteUnpaidInvoices,
		"succeeded":              result.Succeeded(),
		"steps":                  steps,
	})
	if err := s.audit.Append(ctx, record); err != nil {
		s.logger.Warn("failed to append reset audit record",
			zap.String("lease_id", leaseID.String()),
			zap.Error(err))
	}
}
