// Package router wires HTTP routes to handlers and their middleware.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/BenefitMap/BenefitMap/internal/config"
	"github.com/BenefitMap/BenefitMap/internal/handler"
	"github.com/BenefitMap/BenefitMap/internal/middleware"
	"github.com/BenefitMap/BenefitMap/internal/model"
)

// Handlers bundles everything Register needs so main stays short.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Onboarding *handler.OnboardingHandler
	Catalog    *handler.CatalogHandler
	Calendar   *handler.CalendarHandler
	Mail       *handler.MailHandler
	Admin      *handler.AdminHandler
}

// Register mounts every route. The Authenticate middleware runs globally so
// public endpoints still see the caller's identity when a token is present;
// RequireAuth and RequireRole narrow access per group. The Redis-backed
// cache and rate limiter are skipped when rdb is nil, which keeps local
// development working without a Redis instance.
func Register(e *echo.Echo, h Handlers, authn echo.MiddlewareFunc, rdb *redis.Client) {
	e.Use(authn)

	var authLimit []echo.MiddlewareFunc
	if rdb != nil {
		rl := config.LoadRateLimitConfig()
		if rl.Enabled {
			e.Use(middleware.NewTokenBucket(rl, rdb))

			// Tighter bucket for the login/refresh surface: these hit
			// Google and the token store, and brute-forcing them is the
			// only interesting abuse case.
			tight := rl
			tight.Capacity = 10
			tight.RefillTokens = 1
			tight.RefillInterval = 3 * time.Second
			tight.Prefix = rl.Prefix + ":auth"
			authLimit = append(authLimit, middleware.NewTokenBucket(tight, rdb))
		}
	}

	e.GET("/healthz", handler.Health)

	// OAuth handshake and session lifecycle. Refresh and logout stay
	// reachable for suspended and pending users.
	a := e.Group("/auth", authLimit...)
	a.GET("/google", h.Auth.GoogleLogin)
	a.GET("/google/callback", h.Auth.GoogleCallback)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	// Public read surface, cached when Redis is around.
	var cached []echo.MiddlewareFunc
	if rdb != nil {
		cc := config.LoadCacheConfig()
		if cc.Enabled {
			cached = append(cached, middleware.NewRedisCache(cc, rdb))
		}
	}
	e.GET("/tags", h.Onboarding.ListTags, cached...)
	e.GET("/catalog/search", h.Catalog.Search, cached...)
	e.GET("/catalog/:id", h.Catalog.Get, cached...)

	u := e.Group("/user", middleware.RequireAuth())
	u.GET("/me", h.User.Me)
	u.PATCH("/me", h.User.UpdateMe)
	u.DELETE("/me", h.User.DeleteMe)
	u.GET("/me/sessions", h.Auth.Sessions)

	e.POST("/onboarding", h.Onboarding.Complete, middleware.RequireAuth())

	cal := e.Group("/calendar", middleware.RequireAuth())
	cal.GET("", h.Calendar.List)
	cal.POST("", h.Calendar.Create)
	cal.PATCH("/:id", h.Calendar.Update)
	cal.DELETE("/:id", h.Calendar.Delete)

	e.POST("/mail/send", h.Mail.Send, middleware.RequireAuth())

	adm := e.Group("/admin", middleware.RequireAuth(), middleware.RequireRole(model.RoleAdmin))
	adm.GET("/users", h.Admin.ListUsers)
	adm.PATCH("/users/:id/status", h.Admin.UpdateStatus)
}
