package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/config"
	"github.com/BenefitMap/BenefitMap/internal/oauth/google"
)

// Short-lived cookies used to pin the OAuth2 handshake to one browser.
const (
	stateCookieName = "OAUTH_STATE"
	nonceCookieName = "OAUTH_NONCE"
)

// AuthHandler bundles dependencies for the session endpoints: the Google
// handshake client and the session service that does everything after the
// external identity is verified.
type AuthHandler struct {
	Cfg    config.Config
	Auth   *auth.Service
	Google *google.Client
}

func NewAuthHandler(cfg config.Config, svc *auth.Service, g *google.Client) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: svc, Google: g}
}

// GoogleLogin starts the handshake: mint state and nonce, park them in
// short-lived cookies and redirect the browser to the consent screen.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	state := uuid.NewString()
	nonce := uuid.NewString()

	target, err := h.Google.AuthURL(c.Request().Context(), state, nonce)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "oauth discovery failed"})
	}

	c.SetCookie(newAuthCookie(stateCookieName, state, 10*time.Minute, h.Cfg.CookieSecure))
	c.SetCookie(newAuthCookie(nonceCookieName, nonce, 10*time.Minute, h.Cfg.CookieSecure))
	return c.Redirect(http.StatusFound, target)
}

// GoogleCallback finishes the handshake: check state, exchange the code,
// verify the ID token, resolve the local user and hand the browser its
// credential pair before bouncing it back to the front-end. No local state
// is created unless the assertion carries a stable subject id and an email.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login cancelled"})
	}
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" || state != cookieValue(c, stateCookieName) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state mismatch"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tokens, err := h.Google.ExchangeCode(ctx, code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "code exchange failed"})
	}
	claims, err := h.Google.VerifyIDToken(ctx, tokens.IDToken, cookieValue(c, nonceCookieName))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "identity verification failed"})
	}

	user, created, err := h.Auth.Resolve(ctx, auth.Profile{
		Provider:   google.Provider,
		ProviderID: claims.Sub,
		Email:      claims.Email,
		Name:       claims.Name,
		AvatarURL:  claims.Picture,
	})
	if errors.Is(err, auth.ErrInvalidAssertion) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incomplete profile"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve user failed"})
	}

	session, err := h.Auth.IssueSession(ctx, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}

	setAccessCookie(c, session.Access.Raw, h.Auth.Codec.AccessTTL(), h.Cfg.CookieSecure)
	setRefreshCookie(c, session.Refresh.Raw, h.Auth.Codec.RefreshTTL(), h.Cfg.CookieSecure)

	target := h.Cfg.FrontendURL
	if created {
		// Fresh accounts land on the onboarding screen.
		u, err := url.Parse(target)
		if err == nil {
			q := u.Query()
			q.Set("signup", "1")
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	return c.Redirect(http.StatusFound, target)
}

// Refresh exchanges the REFRESH_TOKEN cookie for a fresh ACCESS_TOKEN
// cookie. The refresh record is not rotated: the same cookie keeps working
// until it expires or the user logs out.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := h.Auth.ExchangeRefresh(ctx, cookieValue(c, refreshCookieName))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSuspended):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account suspended"})
		case errors.Is(err, auth.ErrInvalidRefresh),
			errors.Is(err, auth.ErrRefreshExpired),
			errors.Is(err, auth.ErrUserGone):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
		}
	}

	setAccessCookie(c, access.Raw, h.Auth.Codec.AccessTTL(), h.Cfg.CookieSecure)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Logout deletes the refresh record named by the cookie and clears both
// credential cookies. It reports success even when the record was already
// gone or the store write failed; from the user's point of view logout
// never fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, cookieValue(c, refreshCookieName)); err != nil {
		c.Logger().Errorf("logout: %v", err)
	}
	clearAuthCookies(c, h.Cfg.CookieSecure)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Sessions lists the caller's live refresh records so a user can see how
// many devices hold a session.
func (h *AuthHandler) Sessions(c echo.Context) error {
	ac, ok := auth.FromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := h.Auth.ActiveSessions(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	type sessionPart struct {
		CreatedAt time.Time `json:"created_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	out := make([]sessionPart, 0, len(records))
	for _, r := range records {
		out = append(out, sessionPart{CreatedAt: r.CreatedAt, ExpiresAt: r.ExpiresAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}
