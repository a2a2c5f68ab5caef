package lease

import (
	"context"
	"fmt"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service orchestrates the lease lifecycle: signer registry mutations,
// inspection gating and the state-machine transitions they drive. All three
// activation call sites (explicit Activate, inspection signing, the sweep
// job) funnel through the single tryActivate guard, which is what guarantees
// exactly one Lease.Activated event per lease.
type Service struct {
	leases      lease.LeaseRepository
	signers     lease.SignerRepository
	inspections lease.InspectionRepository
	locker      LeaseLocker
	documents   DocumentService
	invitations InvitationSender
	audit       shared.AuditRepository
	logger      *zap.Logger
}

// NewService creates a new lease lifecycle service
func NewService(
	leases lease.LeaseRepository,
	signers lease.SignerRepository,
	inspections lease.InspectionRepository,
	locker LeaseLocker,
	documents DocumentService,
	invitations InvitationSender,
	audit shared.AuditRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		leases:      leases,
		signers:     signers,
		inspections: inspections,
		locker:      locker,
		documents:   documents,
		invitations: invitations,
		audit:       audit,
		logger:      logger,
	}
}

// CreateLease creates a new draft lease owned by the acting manager
func (s *Service) CreateLease(ctx context.Context, actor shared.Actor, req CreateLeaseRequest) (*LeaseDTO, error) {
	ownerID := actor.UserID
	l, err := lease.NewLease(ownerID, req.PropertyID, req.Type, req.StartDate, req.EndDate, req.RentAmount, req.DepositAmount)
	if err != nil {
		return nil, err
	}
	if err := s.leases.Save(ctx, l); err != nil {
		return nil, err
	}
	s.writeAudit(ctx, actor, "lease.create", l.ID, map[string]any{
		"status":      l.Status.String(),
		"property_id": l.PropertyID.String(),
	})
	return toLeaseDTO(l), nil
}

// GetLease returns a lease visible to the actor
func (s *Service) GetLease(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*LeaseDTO, error) {
	l, err := s.loadAuthorized(ctx, actor, leaseID)
	if err != nil {
		return nil, err
	}
	return toLeaseDTO(l), nil
}

// AddSigner invites a party to sign the lease. Adding the first signer moves
// a draft lease to PENDING_SIGNATURE.
func (s *Service) AddSigner(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, req AddSignerRequest) (*SignerDTO, error) {
	var dto *SignerDTO
	err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
		l, err := s.loadAuthorized(ctx, actor, leaseID)
		if err != nil {
			return err
		}
		if !l.Status.CanAddSigner() {
			return shared.NewPreconditionError(
				fmt.Sprintf("Cannot add a signer to a lease in %s status", l.Status)).
				WithDetail("current_status", l.Status.String())
		}

		existing, err := s.signers.FindByLease(ctx, leaseID)
		if err != nil {
			return err
		}
		if req.Role == lease.SignerRolePrincipalTenant && lease.HasPrincipalTenant(existing) {
			return shared.NewConflictError("Lease already has a principal tenant")
		}
		if lease.ContainsParty(existing, req.Email, req.ProfileID) {
			return shared.NewConflictError("This party is already a signer on the lease")
		}

		signer, err := lease.NewSigner(leaseID, req.Role, req.Email, req.ProfileID)
		if err != nil {
			return err
		}

		previousStatus := l.Status
		if l.Status == lease.LeaseStatusDraft {
			if err := l.MarkPendingSignature(); err != nil {
				return err
			}
			if err := s.leases.Save(ctx, l); err != nil {
				return err
			}
		}
		if err := s.signers.Save(ctx, signer); err != nil {
			return err
		}

		outcome := shared.SideEffectDeferred
		if signer.HasContact() {
			outcome = s.invitations.SendInvitation(ctx, signer)
		}
		s.writeAudit(ctx, actor, "lease.add_signer", leaseID, map[string]any{
			"signer_id":          signer.ID.String(),
			"role":               string(signer.Role),
			"previous_status":    previousStatus.String(),
			"new_status":         l.Status.String(),
			"invitation_outcome": string(outcome),
		})

		dto = toSignerDTO(signer)
		return nil
	})
	return dto, err
}

// RecordSignature marks a signer as signed and re-evaluates the lease: the
// fully-signed transition, sealing, and possibly automatic activation when a
// qualifying entry inspection already exists.
func (s *Service) RecordSignature(ctx context.Context, actor shared.Actor, signerID uuid.UUID, proof lease.SignatureProof) (*SignerDTO, error) {
	signer, err := s.signers.FindByID(ctx, signerID)
	if err != nil {
		return nil, err
	}

	var dto *SignerDTO
	err = s.locker.WithLock(ctx, signer.LeaseID, func(ctx context.Context) error {
		// Reload under the lock so the signer set seen by the fully-signed
		// guard includes every committed signature.
		signer, err := s.signers.FindByID(ctx, signerID)
		if err != nil {
			return err
		}
		l, err := s.leases.FindByID(ctx, signer.LeaseID)
		if err != nil {
			return err
		}
		if !actor.CanManage(l.OwnerID) && !signerIsActor(signer, actor) {
			return shared.ErrForbidden
		}

		if err := signer.Sign(proof); err != nil {
			return err
		}
		if err := s.signers.Save(ctx, signer); err != nil {
			return err
		}

		previousStatus := l.Status
		if err := s.evaluateSignatures(ctx, l); err != nil {
			return err
		}
		s.writeAudit(ctx, actor, "lease.record_signature", l.ID, map[string]any{
			"signer_id":       signer.ID.String(),
			"role":            string(signer.Role),
			"previous_status": previousStatus.String(),
			"new_status":      l.Status.String(),
		})

		// Auto-activation: only fires once the lease is fully signed and a
		// qualifying entry inspection exists. No override on this path.
		if _, _, err := s.tryActivate(ctx, actor, l, false); err != nil {
			if shared.IsCode(err, shared.CodePrecondition) {
				s.logger.Debug("lease not yet activatable after signature",
					zap.String("lease_id", l.ID.String()),
					zap.Error(err))
			} else {
				return err
			}
		}

		dto = toSignerDTO(signer)
		return nil
	})
	return dto, err
}

// CreateInspection opens a property-condition inspection for the lease
func (s *Service) CreateInspection(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, kind lease.InspectionKind) (*InspectionDTO, error) {
	var dto *InspectionDTO
	err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
		l, err := s.loadAuthorized(ctx, actor, leaseID)
		if err != nil {
			return err
		}

		if existing, err := s.inspections.FindActiveByLeaseAndKind(ctx, leaseID, kind); err == nil && existing != nil {
			return shared.NewConflictError(
				fmt.Sprintf("A non-cancelled %s inspection already exists for this lease", kind))
		} else if err != nil && !shared.IsCode(err, shared.CodeNotFound) {
			return err
		}

		insp, err := lease.NewInspection(l.ID, kind)
		if err != nil {
			return err
		}
		if err := s.inspections.Save(ctx, insp); err != nil {
			return err
		}
		s.writeAudit(ctx, actor, "inspection.create", l.ID, map[string]any{
			"inspection_id": insp.ID.String(),
			"kind":          string(kind),
		})
		dto = toInspectionDTO(insp)
		return nil
	})
	return dto, err
}

// SignInspection appends a role's signature to an inspection. Completing an
// entry inspection on a fully-signed lease activates the lease.
func (s *Service) SignInspection(ctx context.Context, actor shared.Actor, inspectionID uuid.UUID, role lease.SignerRole, proof lease.SignatureProof) (*InspectionDTO, error) {
	insp, err := s.inspections.FindByID(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	var dto *InspectionDTO
	err = s.locker.WithLock(ctx, insp.LeaseID, func(ctx context.Context) error {
		insp, err := s.inspections.FindByID(ctx, inspectionID)
		if err != nil {
			return err
		}
		l, err := s.loadAuthorized(ctx, actor, insp.LeaseID)
		if err != nil {
			return err
		}

		if err := insp.Sign(role, proof); err != nil {
			return err
		}
		if err := s.inspections.Save(ctx, insp); err != nil {
			return err
		}
		s.writeAudit(ctx, actor, "inspection.sign", l.ID, map[string]any{
			"inspection_id": insp.ID.String(),
			"role":          string(role),
			"status":        string(insp.Status),
		})

		if insp.Kind == lease.InspectionKindEntry && insp.IsQualifying() {
			if _, _, err := s.tryActivate(ctx, actor, l, false); err != nil {
				if shared.IsCode(err, shared.CodePrecondition) {
					s.logger.Debug("inspection signed but lease not activatable",
						zap.String("lease_id", l.ID.String()),
						zap.Error(err))
				} else {
					return err
				}
			}
		}

		dto = toInspectionDTO(insp)
		return nil
	})
	return dto, err
}

// Activate explicitly moves a fully-signed lease into occupancy. With force,
// the qualifying-inspection requirement is waived and the override recorded.
func (s *Service) Activate(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, force bool) (*ActivateResult, error) {
	var result *ActivateResult
	err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
		l, err := s.loadAuthorized(ctx, actor, leaseID)
		if err != nil {
			return err
		}
		activated, warning, err := s.tryActivate(ctx, actor, l, force)
		if err != nil {
			return err
		}
		result = &ActivateResult{
			LeaseID:       l.ID,
			Activated:     activated,
			AlreadyActive: !activated,
			Forced:        force && activated,
			Warning:       string(warning),
		}
		return nil
	})
	return result, err
}

// Terminate ends an active lease
func (s *Service) Terminate(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*LeaseDTO, error) {
	return s.transition(ctx, actor, leaseID, "lease.terminate", func(l *lease.Lease) error {
		return l.Terminate()
	})
}

// Archive moves a non-active lease to its terminal status
func (s *Service) Archive(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*LeaseDTO, error) {
	return s.transition(ctx, actor, leaseID, "lease.archive", func(l *lease.Lease) error {
		return l.Archive()
	})
}

// MarkSent records that the bail was dispatched to the parties unsigned
func (s *Service) MarkSent(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*LeaseDTO, error) {
	return s.transition(ctx, actor, leaseID, "lease.mark_sent", func(l *lease.Lease) error {
		return l.MarkSent()
	})
}

// SweepActivations attempts activation of every fully-signed lease. The
// scheduler calls this to pick up leases whose inspection was signed while
// the automatic path was unavailable. Preconditions are skipped silently.
func (s *Service) SweepActivations(ctx context.Context) (int, error) {
	eligible, err := s.leases.FindByStatus(ctx, lease.LeaseStatusFullySigned)
	if err != nil {
		return 0, err
	}

	actor := shared.SystemActor()
	activated := 0
	for i := range eligible {
		leaseID := eligible[i].ID
		err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
			l, err := s.leases.FindByID(ctx, leaseID)
			if err != nil {
				return err
			}
			ok, _, err := s.tryActivate(ctx, actor, l, false)
			if err != nil {
				return err
			}
			if ok {
				activated++
			}
			return nil
		})
		if err != nil && !shared.IsCode(err, shared.CodePrecondition) {
			s.logger.Warn("activation sweep failed for lease",
				zap.String("lease_id", leaseID.String()),
				zap.Error(err))
		}
	}
	return activated, nil
}

// tryActivate is the single idempotent activation guard. Callers must hold
// the per-lease lock. An already-active lease is a no-op success; the status
// is re-checked here, immediately before the event is emitted, so concurrent
// explicit and automatic activation paths cannot both emit Lease.Activated.
func (s *Service) tryActivate(ctx context.Context, actor shared.Actor, l *lease.Lease, forced bool) (bool, lease.ActivationWarning, error) {
	if l.Status == lease.LeaseStatusActive {
		return false, "", nil
	}
	if l.Status != lease.LeaseStatusFullySigned {
		return false, "", shared.NewPreconditionError(
			fmt.Sprintf("Cannot activate a lease in %s status", l.Status)).
			WithDetail("current_status", l.Status.String()).
			WithDetail("required_status", lease.LeaseStatusFullySigned.String())
	}

	if !forced {
		insp, err := s.inspections.FindActiveByLeaseAndKind(ctx, l.ID, lease.InspectionKindEntry)
		if err != nil {
			if shared.IsCode(err, shared.CodeNotFound) {
				return false, "", shared.NewPreconditionError("Aucun état des lieux d'entrée").
					WithDetail("lease_id", l.ID.String())
			}
			return false, "", err
		}
		if !insp.IsQualifying() {
			return false, "", shared.NewPreconditionError(
				"L'état des lieux d'entrée n'est pas signé par les deux parties").
				WithDetail("inspection_status", string(insp.Status))
		}
	}

	activated, warning, err := l.Activate(forced)
	if err != nil {
		return false, "", err
	}
	if !activated {
		return false, "", nil
	}

	events := l.GetDomainEvents()
	if err := s.leases.SaveWithEvents(ctx, l, events); err != nil {
		return false, "", err
	}
	l.ClearDomainEvents()

	if warning != "" {
		s.logger.Warn("lease activated before its start date",
			zap.String("lease_id", l.ID.String()),
			zap.String("warning", string(warning)))
	}
	s.writeAudit(ctx, actor, "lease.activate", l.ID, map[string]any{
		"previous_status": lease.LeaseStatusFullySigned.String(),
		"new_status":      l.Status.String(),
		"forced":          forced,
		"warning":         string(warning),
	})
	return true, warning, nil
}

// evaluateSignatures re-runs the fully-signed guard from the committed signer
// set; never from a cached snapshot. Reaching fully signed seals the lease.
func (s *Service) evaluateSignatures(ctx context.Context, l *lease.Lease) error {
	signers, err := s.signers.FindByLease(ctx, l.ID)
	if err != nil {
		return err
	}

	if lease.FullySigned(signers) {
		if err := l.MarkFullySigned(); err != nil {
			return err
		}
		if err := s.sealLease(ctx, l, signers); err != nil {
			return err
		}
		events := l.GetDomainEvents()
		if err := s.leases.SaveWithEvents(ctx, l, events); err != nil {
			return err
		}
		l.ClearDomainEvents()
		return nil
	}

	if lease.AnySigned(signers) {
		if l.Status == lease.LeaseStatusPartiallySigned {
			return nil
		}
		if err := l.MarkPartiallySigned(); err != nil {
			return err
		}
		return s.leases.Save(ctx, l)
	}
	return nil
}

// sealLease freezes the contract and stores the signed artifact. Artifact
// storage is the point of the seal: its failure fails the seal, and any
// partially-written artifact is deleted as compensation.
func (s *Service) sealLease(ctx context.Context, l *lease.Lease, signers []lease.Signer) error {
	if l.IsSealed() {
		return nil
	}
	artifactKey, err := s.documents.GenerateSealedDocument(ctx, l, signers)
	if err != nil {
		if artifactKey != "" {
			if delErr := s.documents.Delete(ctx, artifactKey); delErr != nil {
				s.logger.Warn("failed to delete partially-written sealed artifact",
					zap.String("artifact_key", artifactKey),
					zap.Error(delErr))
			}
		}
		return shared.NewDependencyError("Failed to store the sealed lease document").
			WithDetail("cause", err.Error())
	}
	return l.Seal(artifactKey)
}

// transition runs a simple guarded status transition under the lease lock
func (s *Service) transition(ctx context.Context, actor shared.Actor, leaseID uuid.UUID, action string, fn func(*lease.Lease) error) (*LeaseDTO, error) {
	var dto *LeaseDTO
	err := s.locker.WithLock(ctx, leaseID, func(ctx context.Context) error {
		l, err := s.loadAuthorized(ctx, actor, leaseID)
		if err != nil {
			return err
		}
		previousStatus := l.Status
		if err := fn(l); err != nil {
			return err
		}
		if events := l.GetDomainEvents(); len(events) > 0 {
			if err := s.leases.SaveWithEvents(ctx, l, events); err != nil {
				return err
			}
			l.ClearDomainEvents()
		} else if err := s.leases.Save(ctx, l); err != nil {
			return err
		}
		s.writeAudit(ctx, actor, action, l.ID, map[string]any{
			"previous_status": previousStatus.String(),
			"new_status":      l.Status.String(),
		})
		dto = toLeaseDTO(l)
		return nil
	})
	return dto, err
}

// loadAuthorized fetches the lease and verifies the actor manages it
func (s *Service) loadAuthorized(ctx context.Context, actor shared.Actor, leaseID uuid.UUID) (*lease.Lease, error) {
	l, err := s.leases.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(l.OwnerID) {
		return nil, shared.ErrForbidden
	}
	return l, nil
}

// writeAudit appends an audit record; audit failures are logged, never fatal
func (s *Service) writeAudit(ctx context.Context, actor shared.Actor, action string, leaseID uuid.UUID, metadata map[string]any) {
	record := shared.NewAuditRecord(actor, action, "Lease", leaseID, metadata)
	if err := s.audit.Append(ctx, record); err != nil {
		s.logger.Warn("failed to append audit record",
			zap.String("action", action),
			zap.String("lease_id", leaseID.String()),
			zap.Error(err))
	}
}

func signerIsActor(signer *lease.Signer, actor shared.Actor) bool {
	return signer.ProfileID != nil && *signer.ProfileID == actor.UserID
}
