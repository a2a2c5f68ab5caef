package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
)

func TestLogNotifier_Outcomes(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, shared.SideEffectDeferred,
		n.Notify(ctx, uuid.New(), "subject", "body"))
	assert.Equal(t, shared.SideEffectDeferred,
		n.NotifyAdmins(ctx, "reconciliation errors", "details"))
}

func TestLogNotifier_SendInvitation(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())

	reachable, err := lease.NewSigner(uuid.New(), lease.SignerRolePrincipalTenant,
		"tenant@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, shared.SideEffectDeferred,
		n.SendInvitation(context.Background(), reachable))

	profileID := uuid.New()
	unreachable, err := lease.NewSigner(uuid.New(), lease.SignerRoleGuarantor,
		"", &profileID)
	require.NoError(t, err)
	assert.Equal(t, shared.SideEffectFailed,
		n.SendInvitation(context.Background(), unreachable))
}
