package auth

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testSecret() []byte {
	return bytes.Repeat([]byte("k"), 32)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := hasher.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, hasher.Verify(hash, "s3cret!"))
	assert.False(t, hasher.Verify(hash, "wrong"))
	assert.False(t, hasher.VerifyMissing("s3cret!"))
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	hasher, err := NewPasswordHasher(99)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

func TestSessionManager_IssueAndParse(t *testing.T) {
	m, err := NewSessionManager(testSecret(), time.Hour)
	require.NoError(t, err)

	now := time.Now()
	token, err := m.Issue("acc-123", "donor@example.com", now)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-123", claims.AccountID)
	assert.Equal(t, "donor@example.com", claims.Email)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt, time.Second)
}

func TestSessionManager_RejectsExpired(t *testing.T) {
	m, err := NewSessionManager(testSecret(), time.Minute)
	require.NoError(t, err)

	token, err := m.Issue("acc-123", "donor@example.com", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionManager_RejectsForeignKey(t *testing.T) {
	issuer, err := NewSessionManager(testSecret(), time.Hour)
	require.NoError(t, err)
	verifier, err := NewSessionManager(bytes.Repeat([]byte("x"), 32), time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("acc-123", "", time.Now())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = verifier.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestNewSessionManager_ShortKey(t *testing.T) {
	_, err := NewSessionManager([]byte("short"), time.Hour)
	assert.Error(t, err)
}
