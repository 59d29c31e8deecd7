package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenCodec(t *testing.T, accessSec, refreshSec int) (*Codec, time.Time) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec("unit-test-secret", accessSec, refreshSec)
	c.Now = func() time.Time { return base }
	return c, base
}

func TestIssueAndVerifyAccess(t *testing.T) {
	c, base := frozenCodec(t, 900, 1209600)

	tok, err := c.IssueAccess(42, "USER")
	require.NoError(t, err)
	assert.Equal(t, base.Add(900*time.Second), tok.ExpiresAt)

	claims, err := c.Verify(tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "USER", claims.Role)
	assert.False(t, claims.Refresh)
	assert.Equal(t, tok.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestRefreshCarriesTypClaim(t *testing.T) {
	c, _ := frozenCodec(t, 900, 1209600)

	tok, err := c.IssueRefresh(7, "ADMIN")
	require.NoError(t, err)

	claims, err := c.Verify(tok.Raw)
	require.NoError(t, err)
	assert.True(t, claims.Refresh)
	assert.Equal(t, uint64(7), claims.UserID)
}

func TestVerifyExpiry(t *testing.T) {
	c, base := frozenCodec(t, 900, 1209600)
	tok, err := c.IssueAccess(1, "USER")
	require.NoError(t, err)

	// One second before expiry the token still verifies.
	c.Now = func() time.Time { return base.Add(899 * time.Second) }
	_, err = c.Verify(tok.Raw)
	assert.NoError(t, err)

	// At exactly exp the token is dead: the boundary is exclusive.
	c.Now = func() time.Time { return base.Add(900 * time.Second) }
	_, err = c.Verify(tok.Raw)
	assert.ErrorIs(t, err, ErrExpired)

	c.Now = func() time.Time { return base.Add(901 * time.Second) }
	_, err = c.Verify(tok.Raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	c, _ := frozenCodec(t, 900, 1209600)
	tok, err := c.IssueAccess(1, "USER")
	require.NoError(t, err)

	// Flip a character in the signature segment.
	raw := []byte(tok.Raw)
	last := raw[len(raw)-1]
	if last == 'A' {
		raw[len(raw)-1] = 'B'
	} else {
		raw[len(raw)-1] = 'A'
	}
	_, err = c.Verify(string(raw))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	c, _ := frozenCodec(t, 900, 1209600)
	tok, err := c.IssueAccess(1, "USER")
	require.NoError(t, err)

	other := NewCodec("a-different-secret", 900, 1209600)
	other.Now = c.Now
	_, err = other.Verify(tok.Raw)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c, _ := frozenCodec(t, 900, 1209600)

	for _, raw := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		_, err := c.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestVerifyRejectsBadSubject(t *testing.T) {
	c, _ := frozenCodec(t, 900, 1209600)

	tok, err := c.IssueAccess(0, "USER")
	require.NoError(t, err)
	_, err = c.Verify(tok.Raw)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-refresh-token")
	h2 := HashToken("some-refresh-token")
	h3 := HashToken("another-refresh-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
