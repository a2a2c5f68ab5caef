package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/config"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-at-least-32-characters",
		Expiration: time.Hour,
		Issuer:     "bailflow-test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService()
	actor := shared.NewActor(uuid.New(), shared.ActorRoleManager)

	token, expiresAt, err := svc.GenerateToken(actor)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, got.UserID)
	assert.Equal(t, shared.ActorRoleManager, got.Role)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.GenerateToken(shared.NewActor(uuid.New(), shared.ActorRoleAdmin))
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:     "a-completely-different-signing-secret",
		Expiration: time.Hour,
		Issuer:     "bailflow-test",
	})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{
		Secret:     "test-secret-at-least-32-characters",
		Expiration: time.Hour,
		Issuer:     "someone-else",
	})
	token, _, err := issuer.GenerateToken(shared.NewActor(uuid.New(), shared.ActorRoleManager))
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:     "test-secret-at-least-32-characters",
		Expiration: -time.Minute,
		Issuer:     "bailflow-test",
	})
	token, _, err := svc.GenerateToken(shared.NewActor(uuid.New(), shared.ActorRoleManager))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsSystemRole(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.GenerateToken(shared.SystemActor())
	require.NoError(t, err)

	// The system actor never authenticates over HTTP
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := newTestService()
	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
