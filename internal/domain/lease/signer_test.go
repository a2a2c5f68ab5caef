package lease

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bailflow/core/internal/domain/shared"
)

func testProof() SignatureProof {
	return SignatureProof{
		ContentHash:    "sha256:abc",
		SignerIdentity: "tenant@example.com",
		SignedAt:       time.Now(),
	}
}

func TestNewSigner(t *testing.T) {
	leaseID := uuid.New()

	s, err := NewSigner(leaseID, SignerRolePrincipalTenant, " Tenant@Example.COM ", nil)
	require.NoError(t, err)
	assert.Equal(t, "tenant@example.com", s.Email, "email is normalized")
	assert.Equal(t, SignerStatusPending, s.Status)
	assert.NotEmpty(t, s.InvitationToken)

	_, err = NewSigner(leaseID, SignerRole("NOTARY"), "a@b.fr", nil)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = NewSigner(leaseID, SignerRoleCoTenant, "", nil)
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "no email and no profile")

	profileID := uuid.New()
	s, err = NewSigner(leaseID, SignerRoleGuarantor, "", &profileID)
	require.NoError(t, err)
	assert.False(t, s.HasContact())
}

func TestSigner_SignOnce(t *testing.T) {
	s, err := NewSigner(uuid.New(), SignerRolePrincipalTenant, "tenant@example.com", nil)
	require.NoError(t, err)

	require.NoError(t, s.Sign(testProof()))
	assert.True(t, s.HasSigned())
	require.NotNil(t, s.SignedAt)

	err = s.Sign(testProof())
	assert.True(t, shared.IsCode(err, shared.CodePrecondition), "signing twice must fail")
}

func TestSigner_Sign_RequiresProof(t *testing.T) {
	s, err := NewSigner(uuid.New(), SignerRoleOwner, "owner@example.com", nil)
	require.NoError(t, err)

	err = s.Sign(SignatureProof{SignerIdentity: "owner@example.com"})
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
	assert.False(t, s.HasSigned())
}

func TestSigner_ResetToPending(t *testing.T) {
	s, err := NewSigner(uuid.New(), SignerRoleCoTenant, "co@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, s.Sign(testProof()))
	s.SignatureImageKey = "signatures/img.png"

	s.ResetToPending()
	assert.Equal(t, SignerStatusPending, s.Status)
	assert.Nil(t, s.SignedAt)
	assert.True(t, s.Proof.IsZero())
	assert.Empty(t, s.SignatureImageKey)
}

func TestSigner_ReissueInvitationToken(t *testing.T) {
	s, err := NewSigner(uuid.New(), SignerRoleCoTenant, "co@example.com", nil)
	require.NoError(t, err)

	old := s.InvitationToken
	fresh := s.ReissueInvitationToken()
	assert.NotEqual(t, old, fresh)
	assert.Equal(t, fresh, s.InvitationToken)
}

func TestSigner_Matches(t *testing.T) {
	profileID := uuid.New()
	s, err := NewSigner(uuid.New(), SignerRoleCoTenant, "co@example.com", &profileID)
	require.NoError(t, err)

	assert.True(t, s.Matches("CO@example.com", nil))
	assert.True(t, s.Matches("", &profileID))
	other := uuid.New()
	assert.False(t, s.Matches("someone@else.fr", &other))
}

func TestSignerSet_Predicates(t *testing.T) {
	leaseID := uuid.New()
	a, err := NewSigner(leaseID, SignerRolePrincipalTenant, "a@example.com", nil)
	require.NoError(t, err)
	b, err := NewSigner(leaseID, SignerRoleGuarantor, "b@example.com", nil)
	require.NoError(t, err)

	signers := []Signer{*a, *b}
	assert.False(t, FullySigned(signers))
	assert.False(t, AnySigned(signers))
	assert.True(t, HasPrincipalTenant(signers))
	assert.True(t, ContainsParty(signers, "a@example.com", nil))
	assert.False(t, ContainsParty(signers, "c@example.com", nil))

	require.NoError(t, a.Sign(testProof()))
	signers = []Signer{*a, *b}
	assert.True(t, AnySigned(signers))
	assert.False(t, FullySigned(signers))

	require.NoError(t, b.Sign(testProof()))
	signers = []Signer{*a, *b}
	assert.True(t, FullySigned(signers))

	assert.False(t, FullySigned(nil), "an empty signer set never qualifies")
}
