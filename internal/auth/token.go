package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a signed JWT together with its expiry.
type Token struct {
	Raw       string
	ExpiresAt time.Time
}

// Claims is the verified content of a token.
type Claims struct {
	UserID    uint64
	Role      string
	Refresh   bool // true when the token carries typ=refresh
	ExpiresAt time.Time
}

// Codec issues and verifies HS256 tokens with a single symmetric secret.
// TTLs are whole seconds. The secret is set once at construction and never
// changes for the lifetime of the process. Now is injectable so tests can
// simulate the clock; when nil, time.Now is used.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	Now        func() time.Time
}

// NewCodec builds a Codec from the configured signing secret and TTLs in
// seconds.
func NewCodec(secret string, accessTTLSec, refreshTTLSec int) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLSec) * time.Second,
		refreshTTL: time.Duration(refreshTTLSec) * time.Second,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// IssueAccess signs a short-lived access token for the user. The subject
// claim is the decimal user id; role travels as an auxiliary claim but is
// never trusted for authorization decisions (the authenticator re-reads the
// user row on every request).
func (c *Codec) IssueAccess(userID uint64, role string) (Token, error) {
	return c.issue(userID, role, c.accessTTL, false)
}

// IssueRefresh signs a long-lived refresh token for the user. It carries a
// typ=refresh claim so it can never be mistaken for an access token. Only
// its SHA-256 hash is ever persisted server-side.
func (c *Codec) IssueRefresh(userID uint64, role string) (Token, error) {
	return c.issue(userID, role, c.refreshTTL, true)
}

func (c *Codec) issue(userID uint64, role string, ttl time.Duration, refresh bool) (Token, error) {
	now := c.now()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	if refresh {
		claims["typ"] = "refresh"
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Raw: signed, ExpiresAt: exp}, nil
}

// Verify checks signature and expiry of a token and returns its claims.
// Expiry is checked against the Codec clock with no leeway: a token whose
// exp equals the current second is already expired. Failures are reported
// as ErrMalformed, ErrBadSignature, ErrExpired or ErrInvalidSubject.
func (c *Codec) Verify(raw string) (Claims, error) {
	// Expiry is validated below against our own clock, so the library's
	// claim validation is disabled.
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrBadSignature
		default:
			return Claims{}, ErrMalformed
		}
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrMalformed
	}

	expf, ok := mc["exp"].(float64)
	if !ok {
		return Claims{}, ErrMalformed
	}
	exp := time.Unix(int64(expf), 0)
	if !c.now().Before(exp) {
		return Claims{}, ErrExpired
	}

	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || userID == 0 {
		return Claims{}, ErrInvalidSubject
	}

	role, _ := mc["role"].(string)
	typ, _ := mc["typ"].(string)
	return Claims{
		UserID:    userID,
		Role:      role,
		Refresh:   typ == "refresh",
		ExpiresAt: exp,
	}, nil
}

// HashToken returns the SHA-256 digest of a raw refresh token as a 64-char
// hex string. No salt: the input is itself a signed, high-entropy artifact,
// so the digest is the only form ever stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
