// Package auth implements the stateless session core: HS256 token issuing
// and verification, refresh-token hashing, identity resolution from external
// OAuth2 profiles, session issuance and refresh exchange. Handlers translate
// the sentinel errors below into HTTP statuses; the package itself never
// writes HTTP responses.
package auth

import "errors"

// Token verification failures. All of them mean the presented credential is
// unusable; handlers map every one to 401.
var (
	ErrMalformed      = errors.New("token malformed")
	ErrExpired        = errors.New("token expired")
	ErrBadSignature   = errors.New("token signature mismatch")
	ErrInvalidSubject = errors.New("token subject is not a positive integer")
)

// ErrInvalidAssertion is returned by Resolve when the external profile is
// missing provider, provider id or email. No local state is created.
var ErrInvalidAssertion = errors.New("incomplete identity assertion")

// Refresh-exchange failures.
var (
	// ErrInvalidRefresh covers absent, blank, unknown and revoked refresh
	// tokens. Handlers map it to 401.
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// ErrRefreshExpired is returned when the stored record's expiry has
	// passed. Handlers map it to 401.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrUserGone is returned when the token's owner no longer exists.
	// Handlers map it to 401.
	ErrUserGone = errors.New("user no longer exists")
	// ErrSuspended is returned when the token's owner is suspended.
	// Handlers map it to 403.
	ErrSuspended = errors.New("user is suspended")
)
