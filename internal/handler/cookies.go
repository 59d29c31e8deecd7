package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Cookie names delivered to the browser after a successful login. Both are
// HttpOnly and scoped to the site root; SameSite tightens to None+Secure on
// HTTPS deployments so the cookies survive the cross-site OAuth redirect.
const (
	accessCookieName  = "ACCESS_TOKEN"
	refreshCookieName = "REFRESH_TOKEN"
)

func newAuthCookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(maxAge.Seconds()),
	}
	if secure {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	} else {
		ck.SameSite = http.SameSiteLaxMode
	}
	return ck
}

func setAccessCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(newAuthCookie(accessCookieName, token, ttl, secure))
}

func setRefreshCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(newAuthCookie(refreshCookieName, token, ttl, secure))
}

// clearAuthCookies expires both credential cookies immediately. Called on
// logout and account deletion regardless of what the store did, so the
// client is never left holding credentials it believes are live.
func clearAuthCookies(c echo.Context, secure bool) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		ck := newAuthCookie(name, "", 0, secure)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
