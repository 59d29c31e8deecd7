package middleware // middleware provides reusable HTTP middleware for the API

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/model"
)

// AccessCookie is the cookie carrying the access token when no
// Authorization header is present.
const AccessCookie = "ACCESS_TOKEN"

// UserLoader is the single user lookup the authenticator needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate returns the request authenticator. Per request it:
//
//  1. extracts a token from the Authorization Bearer header, falling back
//     to the ACCESS_TOKEN cookie; with no credential at all the request
//     proceeds anonymously (public endpoints stay reachable),
//  2. verifies the token; any verification failure is a hard 401, never a
//     silent downgrade to anonymous,
//  3. re-fetches the user from the database so role and status decisions
//     are made on current state, not on whatever the token was minted
//     with; a vanished user is a 401,
//  4. gates on lifecycle: SUSPENDED users are rejected everywhere except
//     the session endpoints, PENDING users are confined to the onboarding
//     allow-list; both rejections are 403,
//  5. attaches the typed auth.Context for downstream handlers.
func Authenticate(codec *auth.Codec, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return next(c)
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			u, err := users.GetByID(c.Request().Context(), claims.UserID)
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}

			method, route := c.Request().Method, c.Path()
			switch u.Status {
			case model.StatusActive:
			case model.StatusPending:
				if !sessionRoute(method, route) && !pendingAllowed(method, route) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "onboarding required"})
				}
			default: // SUSPENDED
				if !sessionRoute(method, route) {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "account suspended"})
				}
			}

			auth.Attach(c, auth.Context{UserID: u.ID, Role: u.Role})
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

// sessionRoute lists endpoints reachable with a credential regardless of
// lifecycle state, so logout and renewal never lock a user in.
func sessionRoute(method, route string) bool {
	return method == http.MethodPost && (route == "/auth/refresh" || route == "/auth/logout")
}

// pendingAllowed is the allow-list for users who have not finished
// onboarding: the onboarding endpoints themselves, reading their own
// profile, deleting their account and the public read surface.
func pendingAllowed(method, route string) bool {
	switch method {
	case http.MethodGet:
		switch route {
		case "/user/me", "/tags", "/healthz",
			"/catalog/search", "/catalog/:id":
			return true
		}
	case http.MethodPost:
		return route == "/onboarding"
	case http.MethodDelete:
		return route == "/user/me"
	}
	return false
}

// RequireAuth rejects requests that reached a protected route without an
// authenticated identity. Must run after Authenticate.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := auth.FromEcho(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			return next(c)
		}
	}
}
