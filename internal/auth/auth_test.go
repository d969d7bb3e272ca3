package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	secret := []byte("test-secret")
	verifier := NewJWTVerifier(secret)

	token, err := SignToken("user-1", secret, time.Hour)
	require.NoError(t, err)

	session, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Empty(t, session.Scopes)
}

func TestVerifyScopes(t *testing.T) {
	secret := []byte("test-secret")
	verifier := NewJWTVerifier(secret)

	token, err := SignToken("svc-1", secret, time.Hour, ScopeService)
	require.NoError(t, err)

	session, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.True(t, session.HasScope(ScopeService))
	assert.False(t, session.HasScope("admin"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := SignToken("user-1", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTVerifier([]byte("secret-b")).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignToken("user-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = NewJWTVerifier(secret).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewJWTVerifier([]byte("test-secret")).Verify("not-a-token")
	assert.Error(t, err)
}
