package lease

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
)

type serviceFixture struct {
	leases      *fakeLeaseRepo
	signers     *fakeSignerRepo
	inspections *fakeInspectionRepo
	docs        *fakeDocuments
	invites     *fakeInvitations
	audit       *fakeAudit
	svc         *Service
	owner       shared.Actor
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		leases:      newFakeLeaseRepo(),
		signers:     newFakeSignerRepo(),
		inspections: newFakeInspectionRepo(),
		docs:        &fakeDocuments{},
		invites:     &fakeInvitations{},
		audit:       &fakeAudit{},
		owner:       shared.NewActor(uuid.New(), shared.ActorRoleManager),
	}
	f.svc = NewService(f.leases, f.signers, f.inspections, noopLocker{},
		f.docs, f.invites, f.audit, zap.NewNop())
	return f
}

// seedLease stores a lease owned by the fixture's actor in the given status
func (f *serviceFixture) seedLease(t *testing.T, status lease.LeaseStatus) *lease.Lease {
	t.Helper()
	l, err := lease.NewLease(f.owner.UserID, uuid.New(), lease.LeaseTypeUnfurnished,
		time.Now().AddDate(0, 0, -1), nil,
		decimal.NewFromInt(900), decimal.NewFromInt(900))
	require.NoError(t, err)

	switch status {
	case lease.LeaseStatusDraft:
	case lease.LeaseStatusPendingSignature:
		require.NoError(t, l.MarkPendingSignature())
	case lease.LeaseStatusFullySigned:
		require.NoError(t, l.MarkPendingSignature())
		require.NoError(t, l.MarkFullySigned())
	default:
		t.Fatalf("unsupported seed status %s", status)
	}
	l.ClearDomainEvents()
	f.leases.leases[l.ID] = l
	return l
}

// seedQualifyingInspection stores a both-sides-signed entry inspection
func (f *serviceFixture) seedQualifyingInspection(t *testing.T, leaseID uuid.UUID) *lease.Inspection {
	t.Helper()
	insp, err := lease.NewInspection(leaseID, lease.InspectionKindEntry)
	require.NoError(t, err)
	proof := lease.SignatureProof{ContentHash: "sha256:edl", SignerIdentity: "x"}
	require.NoError(t, insp.Sign(lease.SignerRoleOwner, proof))
	require.NoError(t, insp.Sign(lease.SignerRolePrincipalTenant, proof))
	f.inspections.inspections[insp.ID] = insp
	return insp
}

func TestService_CreateLease(t *testing.T) {
	f := newServiceFixture()

	dto, err := f.svc.CreateLease(context.Background(), f.owner, CreateLeaseRequest{
		PropertyID:    uuid.New(),
		Type:          lease.LeaseTypeFurnished,
		StartDate:     time.Now(),
		RentAmount:    decimal.NewFromInt(750),
		DepositAmount: decimal.NewFromInt(750),
	})
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusDraft, dto.Status)
	assert.Equal(t, f.owner.UserID, dto.OwnerID)
	assert.Contains(t, f.audit.actions(), "lease.create")
}

func TestService_GetLease_Forbidden(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusDraft)

	stranger := shared.NewActor(uuid.New(), shared.ActorRoleManager)
	_, err := f.svc.GetLease(context.Background(), stranger, l.ID)
	assert.True(t, shared.IsCode(err, shared.CodeForbidden))

	admin := shared.NewActor(uuid.New(), shared.ActorRoleAdmin)
	_, err = f.svc.GetLease(context.Background(), admin, l.ID)
	assert.NoError(t, err, "admins see every lease")
}

func TestService_AddSigner_FirstSignerMovesDraftToPending(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusDraft)

	dto, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role:  lease.SignerRolePrincipalTenant,
		Email: "tenant@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, lease.SignerStatusPending, dto.Status)
	assert.Equal(t, lease.LeaseStatusPendingSignature, l.Status)
	assert.Len(t, f.invites.sent, 1)
}

func TestService_AddSigner_Conflicts(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)

	_, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRolePrincipalTenant, Email: "tenant@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRolePrincipalTenant, Email: "other@example.com",
	})
	assert.True(t, shared.IsCode(err, shared.CodeConflict), "second principal tenant")

	_, err = f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRoleGuarantor, Email: "tenant@example.com",
	})
	assert.True(t, shared.IsCode(err, shared.CodeConflict), "same party twice")
}

func TestService_AddSigner_RejectedAfterSigningStarts(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)

	_, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRoleCoTenant, Email: "co@example.com",
	})
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
}

func TestService_RecordSignature_FullFlowSealsLease(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)

	first, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRolePrincipalTenant, Email: "tenant@example.com",
	})
	require.NoError(t, err)
	second, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRoleOwner, Email: "owner@example.com",
	})
	require.NoError(t, err)

	proof := lease.SignatureProof{ContentHash: "sha256:doc", SignerIdentity: "tenant@example.com"}
	_, err = f.svc.RecordSignature(context.Background(), f.owner, first.ID, proof)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusPartiallySigned, l.Status)
	assert.False(t, l.IsSealed())

	_, err = f.svc.RecordSignature(context.Background(), f.owner, second.ID, proof)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusFullySigned, l.Status, "no entry inspection, so no auto-activation")
	assert.True(t, l.IsSealed())
	assert.Equal(t, 1, f.docs.generated)
	assert.Contains(t, f.leases.eventTypes(), "Lease.FullySigned")
}

func TestService_RecordSignature_SigningTwiceFails(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)
	dto, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRolePrincipalTenant, Email: "tenant@example.com",
	})
	require.NoError(t, err)

	proof := lease.SignatureProof{ContentHash: "sha256:doc", SignerIdentity: "tenant@example.com"}
	_, err = f.svc.RecordSignature(context.Background(), f.owner, dto.ID, proof)
	require.NoError(t, err)

	_, err = f.svc.RecordSignature(context.Background(), f.owner, dto.ID, proof)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
}

func TestService_RecordSignature_AutoActivation(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)
	f.seedQualifyingInspection(t, l.ID)

	dto, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRolePrincipalTenant, Email: "tenant@example.com",
	})
	require.NoError(t, err)

	proof := lease.SignatureProof{ContentHash: "sha256:doc", SignerIdentity: "tenant@example.com"}
	_, err = f.svc.RecordSignature(context.Background(), f.owner, dto.ID, proof)
	require.NoError(t, err)

	assert.Equal(t, lease.LeaseStatusActive, l.Status)

	activations := 0
	for _, et := range f.leases.eventTypes() {
		if et == "Lease.Activated" {
			activations++
		}
	}
	assert.Equal(t, 1, activations, "exactly one activation event")
	assert.Contains(t, f.leases.eventTypes(), "KeyHandover.Created")
}

func TestService_SealCompensation(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)
	f.docs.generateKey = "leases/partial.txt"
	f.docs.generateErr = assert.AnError

	dto, err := f.svc.AddSigner(context.Background(), f.owner, l.ID, AddSignerRequest{
		Role: lease.SignerRolePrincipalTenant, Email: "tenant@example.com",
	})
	require.NoError(t, err)

	proof := lease.SignatureProof{ContentHash: "sha256:doc", SignerIdentity: "tenant@example.com"}
	_, err = f.svc.RecordSignature(context.Background(), f.owner, dto.ID, proof)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeDependency))
	assert.Contains(t, f.docs.deleted, "leases/partial.txt", "partial artifact is cleaned up")
	assert.False(t, l.IsSealed())
}

func TestService_Activate_RequiresEntryInspection(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)

	_, err := f.svc.Activate(context.Background(), f.owner, l.ID, false)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
	assert.Contains(t, err.Error(), "Aucun état des lieux d'entrée")
}

func TestService_Activate_UnqualifyingInspectionRejected(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)

	insp, err := lease.NewInspection(l.ID, lease.InspectionKindEntry)
	require.NoError(t, err)
	require.NoError(t, insp.Sign(lease.SignerRoleOwner,
		lease.SignatureProof{ContentHash: "sha256:edl", SignerIdentity: "x"}))
	f.inspections.inspections[insp.ID] = insp

	_, err = f.svc.Activate(context.Background(), f.owner, l.ID, false)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
}

func TestService_Activate_Forced(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)

	result, err := f.svc.Activate(context.Background(), f.owner, l.ID, true)
	require.NoError(t, err)
	assert.True(t, result.Activated)
	assert.True(t, result.Forced)
	assert.Equal(t, lease.LeaseStatusActive, l.Status)
}

func TestService_Activate_Idempotent(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)
	f.seedQualifyingInspection(t, l.ID)

	first, err := f.svc.Activate(context.Background(), f.owner, l.ID, false)
	require.NoError(t, err)
	assert.True(t, first.Activated)

	second, err := f.svc.Activate(context.Background(), f.owner, l.ID, false)
	require.NoError(t, err)
	assert.False(t, second.Activated)
	assert.True(t, second.AlreadyActive)

	activations := 0
	for _, et := range f.leases.eventTypes() {
		if et == "Lease.Activated" {
			activations++
		}
	}
	assert.Equal(t, 1, activations, "duplicate activation must not re-emit")
}

func TestService_SignInspection_ActivatesFullySignedLease(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)

	dto, err := f.svc.CreateInspection(context.Background(), f.owner, l.ID, lease.InspectionKindEntry)
	require.NoError(t, err)

	proof := lease.SignatureProof{ContentHash: "sha256:edl", SignerIdentity: "x"}
	_, err = f.svc.SignInspection(context.Background(), f.owner, dto.ID, lease.SignerRoleOwner, proof)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusFullySigned, l.Status, "one side signed, no activation yet")

	inspDTO, err := f.svc.SignInspection(context.Background(), f.owner, dto.ID, lease.SignerRolePrincipalTenant, proof)
	require.NoError(t, err)
	assert.True(t, inspDTO.Qualifying)
	assert.Equal(t, lease.LeaseStatusActive, l.Status)
}

func TestService_CreateInspection_DuplicateKindRejected(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)

	_, err := f.svc.CreateInspection(context.Background(), f.owner, l.ID, lease.InspectionKindEntry)
	require.NoError(t, err)

	_, err = f.svc.CreateInspection(context.Background(), f.owner, l.ID, lease.InspectionKindEntry)
	assert.True(t, shared.IsCode(err, shared.CodeConflict))

	_, err = f.svc.CreateInspection(context.Background(), f.owner, l.ID, lease.InspectionKindExit)
	assert.NoError(t, err, "a different kind is allowed")
}

func TestService_SweepActivations(t *testing.T) {
	f := newServiceFixture()
	ready := f.seedLease(t, lease.LeaseStatusFullySigned)
	f.seedQualifyingInspection(t, ready.ID)
	notReady := f.seedLease(t, lease.LeaseStatusFullySigned)

	activated, err := f.svc.SweepActivations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, activated)
	assert.Equal(t, lease.LeaseStatusActive, ready.Status)
	assert.Equal(t, lease.LeaseStatusFullySigned, notReady.Status)
}

func TestService_TerminateArchiveLifecycle(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusFullySigned)
	_, _, err := l.Activate(false)
	require.NoError(t, err)
	l.ClearDomainEvents()

	// Active leases cannot be archived outright
	_, err = f.svc.Archive(context.Background(), f.owner, l.ID)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))

	dto, err := f.svc.Terminate(context.Background(), f.owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusTerminated, dto.Status)
	assert.NotNil(t, dto.TerminatedAt)
	assert.Contains(t, f.leases.eventTypes(), lease.EventTypeLeaseTerminated)
	assert.Contains(t, f.audit.actions(), "lease.terminate")

	_, err = f.svc.Terminate(context.Background(), f.owner, l.ID)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition), "terminate is not repeatable")

	dto, err = f.svc.Archive(context.Background(), f.owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusArchived, dto.Status)
}

func TestService_MarkSent(t *testing.T) {
	f := newServiceFixture()
	l := f.seedLease(t, lease.LeaseStatusPendingSignature)

	dto, err := f.svc.MarkSent(context.Background(), f.owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusSent, dto.Status)

	active := f.seedLease(t, lease.LeaseStatusFullySigned)
	_, _, err = active.Activate(false)
	require.NoError(t, err)
	active.ClearDomainEvents()
	_, err = f.svc.MarkSent(context.Background(), f.owner, active.ID)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
}
