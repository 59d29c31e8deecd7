package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the given roles. Roles come from the auth.Context the
// authenticator attached, which reflects the current database row, not the
// token. A missing identity or a role outside the allowed set is a 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, ok := auth.FromEcho(c)
			if !ok || !allowed[ac.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
