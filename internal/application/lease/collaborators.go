package lease

import (
	"context"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
)

// LeaseLocker serializes all mutations touching a single lease: status
// transitions, signer updates and deposit appends for one lease never
// interleave.
type LeaseLocker interface {
	// WithLock runs fn while holding the lock for leaseID
	WithLock(ctx context.Context, leaseID uuid.UUID, fn func(ctx context.Context) error) error
}

// DocumentService is the document/signature-proof generator collaborator.
// It produces the immutable signed artifact referenced by a sealed lease and
// deletes stored objects during reset compensation.
type DocumentService interface {
	// GenerateSealedDocument renders and stores the frozen contract, returning
	// the artifact key. The caller fails the seal if this errors.
	GenerateSealedDocument(ctx context.Context, l *lease.Lease, signers []lease.Signer) (string, error)
	// Delete removes a stored object by key. Best-effort in reset flows.
	Delete(ctx context.Context, key string) error
}

// InvitationSender dispatches signature invitations. Fire-and-forget: the
// outcome is recorded in the audit trail, never surfaced as the operation's
// failure.
type InvitationSender interface {
	SendInvitation(ctx context.Context, signer *lease.Signer) shared.SideEffectOutcome
}

// Notifier is the write-only notification collaborator
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, subject, body string) shared.SideEffectOutcome
	NotifyAdmins(ctx context.Context, subject, body string) shared.SideEffectOutcome
}
