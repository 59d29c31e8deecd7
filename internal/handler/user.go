package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/config"
	"github.com/BenefitMap/BenefitMap/internal/model"
	"github.com/BenefitMap/BenefitMap/internal/repository"
)

// UserHandler serves the self-service profile endpoints ("my page").
type UserHandler struct {
	Cfg      config.Config
	Auth     *auth.Service
	Users    *repository.UserRepo
	Profiles *repository.ProfileRepo
	Tags     *repository.TagRepo
}

func NewUserHandler(cfg config.Config, svc *auth.Service, u *repository.UserRepo, p *repository.ProfileRepo, t *repository.TagRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Auth: svc, Users: u, Profiles: p, Tags: t}
}

type userPart struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatar_url"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"last_login_at,omitempty"`
}

type profilePart struct {
	BirthYear     *uint16 `json:"birth_year"`
	Region        string  `json:"region"`
	HouseholdSize *uint8  `json:"household_size"`
	IncomeBand    string  `json:"income_band"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID: u.ID, Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL,
		Role: u.Role, Status: u.Status, LastLogin: u.LastLoginAt,
	}
}

// Me returns the caller's account, onboarding profile and tag selections.
// The profile block is null until onboarding has been completed.
func (h *UserHandler) Me(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	resp := echo.Map{"user": toUserPart(u), "profile": nil, "tags": []model.Tag{}}

	p, err := h.Profiles.Get(ctx, ac.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	if err == nil {
		resp["profile"] = profilePart{
			BirthYear: p.BirthYear, Region: p.Region,
			HouseholdSize: p.HouseholdSize, IncomeBand: p.IncomeBand,
		}
	}

	tags, err := h.Tags.GetUserTags(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tags failed"})
	}
	if tags != nil {
		resp["tags"] = tags
	}
	return c.JSON(http.StatusOK, resp)
}

type updateMeReq struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateMe applies a partial edit of display name and avatar.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	name, avatar := u.Name, u.AvatarURL
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
	}
	if req.AvatarURL != nil {
		avatar = strings.TrimSpace(*req.AvatarURL)
	}
	if err := h.Users.UpdateBasics(ctx, ac.UserID, name, avatar); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	u, err = h.Users.GetByID(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// DeleteMe removes the account: every refresh record goes first, then the
// user row (profile, tag selections and calendar entries cascade). Both
// credential cookies are cleared no matter what.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.DeleteAccount(ctx, ac.UserID); err != nil {
		clearAuthCookies(c, h.Cfg.CookieSecure)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	clearAuthCookies(c, h.Cfg.CookieSecure)
	return c.NoContent(http.StatusNoContent)
}
