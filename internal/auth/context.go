package auth

import "github.com/labstack/echo/v4"

// ContextKey is the echo.Context key under which the authenticator stores
// the caller's identity.
const ContextKey = "auth_context"

// Context is the typed identity attached to a request after successful
// authentication. Downstream code consumes this value only; nothing reads
// raw claims out of the request again.
type Context struct {
	UserID uint64
	Role   string
}

// Attach stores the identity on the request context.
func Attach(c echo.Context, ac Context) { c.Set(ContextKey, ac) }

// FromEcho returns the identity attached by the authenticator, if any.
func FromEcho(c echo.Context) (Context, bool) {
	ac, ok := c.Get(ContextKey).(Context)
	return ac, ok
}
