package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/domain/user"
)

func TestVerifierRoundTrip(t *testing.T) {
	v, err := NewVerifier("secret", "skillswap")
	require.NoError(t, err)

	token, err := v.Sign(Principal{UserID: "u1", Role: user.RoleAdmin}, time.Hour, time.Now())
	require.NoError(t, err)

	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID("u1"), p.UserID)
	assert.True(t, p.IsAdmin())
}

func TestVerifierRejectsExpiredAndForeignTokens(t *testing.T) {
	v, err := NewVerifier("secret", "skillswap")
	require.NoError(t, err)
	other, err := NewVerifier("other", "skillswap")
	require.NoError(t, err)

	expired, err := v.Sign(Principal{UserID: "u1"}, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	foreign, err := other.Sign(Principal{UserID: "u1"}, time.Hour, time.Now())
	require.NoError(t, err)
	_, err = v.Verify(foreign)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(" ", "")
	assert.ErrorIs(t, err, ErrSecretEmpty)
}
