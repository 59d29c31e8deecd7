package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/model"
)

type fakeLoader struct {
	users map[uint64]model.User
}

func (f *fakeLoader) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func testCodec() *auth.Codec {
	c := auth.NewCodec("middleware-test-secret", 900, 1209600)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.Now = func() time.Time { return base }
	return c
}

// do runs a request through Authenticate into a probe handler that reports
// whether an identity was attached.
func do(t *testing.T, codec *auth.Codec, loader UserLoader, method, path string, decorate func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	var attached bool
	e.Add(method, path, func(c echo.Context) error {
		_, attached = auth.FromEcho(c)
		return c.NoContent(http.StatusOK)
	}, Authenticate(codec, loader))

	req := httptest.NewRequest(method, path, nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, attached
}

func TestAuthenticateAnonymousPassThrough(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{}}

	rec, attached := do(t, codec, loader, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, attached)
}

func TestAuthenticateBearerHeader(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{
		1: {ID: 1, Role: model.RoleUser, Status: model.StatusActive},
	}}
	tok, err := codec.IssueAccess(1, model.RoleUser)
	require.NoError(t, err)

	rec, attached := do(t, codec, loader, http.MethodGet, "/user/me", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Raw)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, attached)
}

func TestAuthenticateCookieFallback(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{
		1: {ID: 1, Role: model.RoleUser, Status: model.StatusActive},
	}}
	tok, err := codec.IssueAccess(1, model.RoleUser)
	require.NoError(t, err)

	rec, attached := do(t, codec, loader, http.MethodGet, "/user/me", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: tok.Raw})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, attached)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{}}

	// A present-but-invalid credential is a hard 401, not anonymous.
	rec, _ := do(t, codec, loader, http.MethodGet, "/healthz", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsVanishedUser(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{}}
	tok, err := codec.IssueAccess(99, model.RoleUser)
	require.NoError(t, err)

	rec, _ := do(t, codec, loader, http.MethodGet, "/user/me", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Raw)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatePendingGating(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{
		1: {ID: 1, Role: model.RoleUser, Status: model.StatusPending},
	}}
	tok, err := codec.IssueAccess(1, model.RoleUser)
	require.NoError(t, err)
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok.Raw) }

	// Allow-listed routes work while onboarding is unfinished.
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/user/me"},
		{http.MethodGet, "/tags"},
		{http.MethodPost, "/onboarding"},
		{http.MethodPost, "/auth/refresh"},
		{http.MethodDelete, "/user/me"},
	} {
		rec, _ := do(t, codec, loader, tc.method, tc.path, bearer)
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
	}

	// Everything else is refused until onboarding completes.
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/calendar"},
		{http.MethodPost, "/mail/send"},
		{http.MethodPatch, "/user/me"},
	} {
		rec, _ := do(t, codec, loader, tc.method, tc.path, bearer)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAuthenticateSuspendedGating(t *testing.T) {
	codec := testCodec()
	loader := &fakeLoader{users: map[uint64]model.User{
		1: {ID: 1, Role: model.RoleUser, Status: model.StatusSuspended},
	}}
	tok, err := codec.IssueAccess(1, model.RoleUser)
	require.NoError(t, err)
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok.Raw) }

	rec, _ := do(t, codec, loader, http.MethodGet, "/user/me", bearer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Logout stays reachable so a suspended user can still end the session.
	rec, _ = do(t, codec, loader, http.MethodPost, "/auth/logout", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	attach := func(role string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				auth.Attach(c, auth.Context{UserID: 1, Role: role})
				return next(c)
			}
		}
	}
	e.GET("/admin-only", h, attach(model.RoleUser), RequireRole(model.RoleAdmin))
	e.GET("/admin-ok", h, attach(model.RoleAdmin), RequireRole(model.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin-ok", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
