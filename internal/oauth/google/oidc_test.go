package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// warmClient returns a Client whose discovery and JWKS caches are pre-seeded
// with a locally generated RSA key, so verification runs without network.
func warmClient(t *testing.T) (*Client, *rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kid := "test-kid-1"

	c := New("client-id-123", "secret", "https://app.example.com/auth/google/callback")
	c.disc = &discoveryDoc{
		Issuer:        "https://accounts.google.com",
		AuthEndpoint:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenEndpoint: "https://oauth2.googleapis.com/token",
		JWKSURI:       "https://www.googleapis.com/oauth2/v3/certs",
	}
	c.discAt = time.Now()
	c.keys = &keySet{Keys: []jsonWebKey{{
		Kty: "RSA",
		Kid: kid,
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}}}
	c.keysAt = time.Now()
	return c, key, kid
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            "client-id-123",
		"sub":            "google-sub-42",
		"email":          "user@example.com",
		"email_verified": true,
		"name":           "Test User",
		"picture":        "https://lh3.example.com/p.jpg",
		"nonce":          "nonce-1",
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	}
}

func TestVerifyIDToken(t *testing.T) {
	c, key, kid := warmClient(t)

	raw := signIDToken(t, key, kid, baseClaims())
	claims, err := c.VerifyIDToken(context.Background(), raw, "nonce-1")
	require.NoError(t, err)
	assert.Equal(t, "google-sub-42", claims.Sub)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, "Test User", claims.Name)
}

func TestVerifyIDTokenRejectsBadNonce(t *testing.T) {
	c, key, kid := warmClient(t)

	raw := signIDToken(t, key, kid, baseClaims())
	_, err := c.VerifyIDToken(context.Background(), raw, "other-nonce")
	assert.Error(t, err)
}

func TestVerifyIDTokenRejectsWrongAudience(t *testing.T) {
	c, key, kid := warmClient(t)

	claims := baseClaims()
	claims["aud"] = "someone-else"
	raw := signIDToken(t, key, kid, claims)
	_, err := c.VerifyIDToken(context.Background(), raw, "nonce-1")
	assert.Error(t, err)
}

func TestVerifyIDTokenRejectsWrongIssuer(t *testing.T) {
	c, key, kid := warmClient(t)

	claims := baseClaims()
	claims["iss"] = "https://evil.example.com"
	raw := signIDToken(t, key, kid, claims)
	_, err := c.VerifyIDToken(context.Background(), raw, "nonce-1")
	assert.Error(t, err)
}

func TestVerifyIDTokenRejectsWrongKey(t *testing.T) {
	c, _, kid := warmClient(t)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	raw := signIDToken(t, other, kid, baseClaims())
	_, err = c.VerifyIDToken(context.Background(), raw, "nonce-1")
	assert.Error(t, err)
}

func TestAuthURL(t *testing.T) {
	c, _, _ := warmClient(t)

	raw, err := c.AuthURL(context.Background(), "state-1", "nonce-1")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id-123", q.Get("client_id"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "nonce-1", q.Get("nonce"))
}
