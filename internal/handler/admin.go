package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/model"
	"github.com/BenefitMap/BenefitMap/internal/repository"
)

// AdminHandler exposes the operator surface: paging through accounts and
// changing their lifecycle status. Routes are mounted behind RequireRole(ADMIN).
type AdminHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAdminHandler(users *repository.UserRepo, tokens *repository.TokenRepo) *AdminHandler {
	return &AdminHandler{Users: users, Tokens: tokens}
}

// ListUsers pages through all accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 || size > 100 {
		size = 20
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, size, (page-1)*size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	parts := make([]userPart, 0, len(users))
	for _, u := range users {
		parts = append(parts, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": parts, "page": page, "page_size": size})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus changes an account's lifecycle status. Suspending an account
// also revokes every refresh token it holds, so outstanding sessions die as
// soon as their access tokens expire.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Status {
	case model.StatusPending, model.StatusActive, model.StatusSuspended:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.UpdateStatus(ctx, id, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if req.Status == model.StatusSuspended {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			c.Logger().Errorf("revoke tokens for user %d: %v", id, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
