package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
)

// LogNotifier writes notifications to the application log instead of an
// external channel. It stands in for the mail/SMS gateway in environments
// where none is configured; messages are reported as DEFERRED so the audit
// trail shows they still await real delivery.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify records a user notification in the log
func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, subject, body string) shared.SideEffectOutcome {
	n.logger.Info("notification",
		zap.String("user_id", userID.String()),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return shared.SideEffectDeferred
}

// NotifyAdmins records an administrator notification in the log
func (n *LogNotifier) NotifyAdmins(ctx context.Context, subject, body string) shared.SideEffectOutcome {
	n.logger.Warn("admin notification",
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return shared.SideEffectDeferred
}

// SendInvitation records a signature invitation in the log. Signers without
// contact details cannot be reached on any channel.
func (n *LogNotifier) SendInvitation(ctx context.Context, signer *lease.Signer) shared.SideEffectOutcome {
	if !signer.HasContact() {
		n.logger.Warn("signer has no contact details, invitation not sent",
			zap.String("signer_id", signer.ID.String()),
			zap.String("lease_id", signer.LeaseID.String()),
		)
		return shared.SideEffectFailed
	}
	n.logger.Info("signature invitation",
		zap.String("signer_id", signer.ID.String()),
		zap.String("lease_id", signer.LeaseID.String()),
		zap.String("email", signer.Email),
		zap.String("role", string(signer.Role)),
	)
	return shared.SideEffectDeferred
}
