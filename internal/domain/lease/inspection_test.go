package lease

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bailflow/core/internal/domain/shared"
)

func TestNewInspection(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)
	assert.Equal(t, InspectionStatusDraft, i.Status)
	assert.False(t, i.IsQualifying())

	_, err = NewInspection(uuid.New(), InspectionKind("MIDTERM"))
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestInspection_SignBothSides(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)

	require.NoError(t, i.Sign(SignerRoleOwner, testProof()))
	assert.Equal(t, InspectionStatusInProgress, i.Status)
	assert.False(t, i.IsQualifying(), "one side is not enough")

	require.NoError(t, i.Sign(SignerRolePrincipalTenant, testProof()))
	assert.Equal(t, InspectionStatusSigned, i.Status)
	require.NotNil(t, i.CompletedDate)
	assert.True(t, i.IsQualifying())
}

func TestInspection_SignSameSideTwice(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)
	require.NoError(t, i.Sign(SignerRolePrincipalTenant, testProof()))

	// Co-tenant signs the same (tenant) side
	err = i.Sign(SignerRoleCoTenant, testProof())
	assert.True(t, shared.IsCode(err, shared.CodeConflict))
}

func TestInspection_ExitNeverQualifies(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindExit)
	require.NoError(t, err)
	require.NoError(t, i.Sign(SignerRoleOwner, testProof()))
	require.NoError(t, i.Sign(SignerRolePrincipalTenant, testProof()))

	assert.Equal(t, InspectionStatusSigned, i.Status)
	assert.False(t, i.IsQualifying())
}

func TestInspection_DisputeBlocksSigning(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)
	require.NoError(t, i.Dispute())

	err = i.Sign(SignerRoleOwner, testProof())
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))

	require.NoError(t, i.Resolve(InspectionStatusCompleted))
	assert.Equal(t, InspectionStatusCompleted, i.Status)

	err = i.Resolve(InspectionStatusSigned)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition), "only disputed inspections resolve")
}

func TestInspection_Cancel(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)
	require.NoError(t, i.Cancel())
	assert.Equal(t, InspectionStatusCancelled, i.Status)

	signed, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)
	require.NoError(t, signed.Sign(SignerRoleOwner, testProof()))
	require.NoError(t, signed.Sign(SignerRolePrincipalTenant, testProof()))
	assert.True(t, shared.IsCode(signed.Cancel(), shared.CodePrecondition))
}

func TestInspection_ResetToDraft(t *testing.T) {
	i, err := NewInspection(uuid.New(), InspectionKindEntry)
	require.NoError(t, err)
	require.NoError(t, i.Sign(SignerRoleOwner, testProof()))
	require.NoError(t, i.Sign(SignerRolePrincipalTenant, testProof()))

	i.ResetToDraft()
	assert.Equal(t, InspectionStatusDraft, i.Status)
	assert.Nil(t, i.CompletedDate)
	assert.Empty(t, i.Signatures)
	assert.False(t, i.IsQualifying())
}
