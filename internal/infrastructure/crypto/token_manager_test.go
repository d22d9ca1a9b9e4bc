package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.IssueAccessToken("alice", "operator", "alice@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.False(t, claims.IsRefreshToken)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestIssueAndVerifyRefreshToken(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.IssueRefreshToken("alice")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsRefreshToken)
	assert.Empty(t, claims.Role)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 7*24*time.Hour, ttl)
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewTokenManager(testSecret)

	issued := time.Now().Add(-48 * time.Hour)
	m.now = func() time.Time { return issued }
	token, err := m.IssueAccessToken("alice", "operator", "alice@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenManager(testSecret)
	verifier := NewTokenManager("another-secret-another-secret-32")

	token, err := issuer.IssueAccessToken("alice", "operator", "alice@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	m := NewTokenManager(testSecret)

	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	m := NewTokenManager(testSecret)

	first, err := m.IssueRefreshToken("alice")
	require.NoError(t, err)
	second, err := m.IssueRefreshToken("alice")
	require.NoError(t, err)

	c1, err := m.Verify(first)
	require.NoError(t, err)
	c2, err := m.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}
