package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/model"
	"github.com/BenefitMap/BenefitMap/internal/repository"
)

// CalendarHandler serves a user's personal deadline calendar. All routes
// require an authenticated, active user; ownership of individual events is
// enforced by the repository.
type CalendarHandler struct {
	Events *repository.CalendarRepo
}

func NewCalendarHandler(e *repository.CalendarRepo) *CalendarHandler {
	return &CalendarHandler{Events: e}
}

type calendarPart struct {
	ID          uint64  `json:"id"`
	BenefitID   *uint64 `json:"benefit_id"`
	Title       string  `json:"title"`
	Memo        string  `json:"memo"`
	StartsOn    string  `json:"starts_on"`
	EndsOn      *string `json:"ends_on"`
	NotifyEmail bool    `json:"notify_email"`
}

func toCalendarPart(e model.CalendarEvent) calendarPart {
	p := calendarPart{
		ID:          e.ID,
		BenefitID:   e.BenefitID,
		Title:       e.Title,
		Memo:        e.Memo,
		StartsOn:    e.StartsOn.Format("2006-01-02"),
		NotifyEmail: e.NotifyEmail,
	}
	if e.EndsOn != nil {
		s := e.EndsOn.Format("2006-01-02")
		p.EndsOn = &s
	}
	return p
}

type calendarReq struct {
	BenefitID   *uint64 `json:"benefit_id"`
	Title       string  `json:"title"`
	Memo        string  `json:"memo"`
	StartsOn    string  `json:"starts_on"` // YYYY-MM-DD
	EndsOn      *string `json:"ends_on"`
	NotifyEmail bool    `json:"notify_email"`
}

func (r *calendarReq) parse() (model.CalendarEvent, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return model.CalendarEvent{}, errors.New("title required")
	}
	starts, err := time.Parse("2006-01-02", r.StartsOn)
	if err != nil {
		return model.CalendarEvent{}, errors.New("starts_on must be YYYY-MM-DD")
	}
	e := model.CalendarEvent{
		BenefitID:   r.BenefitID,
		Title:       r.Title,
		Memo:        strings.TrimSpace(r.Memo),
		StartsOn:    starts,
		NotifyEmail: r.NotifyEmail,
	}
	if r.EndsOn != nil && *r.EndsOn != "" {
		ends, err := time.Parse("2006-01-02", *r.EndsOn)
		if err != nil {
			return model.CalendarEvent{}, errors.New("ends_on must be YYYY-MM-DD")
		}
		if ends.Before(starts) {
			return model.CalendarEvent{}, errors.New("ends_on before starts_on")
		}
		e.EndsOn = &ends
	}
	return e, nil
}

// List returns the caller's events ordered by start date.
func (h *CalendarHandler) List(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListForUser(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	parts := make([]calendarPart, 0, len(events))
	for _, e := range events {
		parts = append(parts, toCalendarPart(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": parts})
}

// Create adds an event for the caller.
func (h *CalendarHandler) Create(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	var req calendarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	e.UserID = ac.UserID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Events.Create(ctx, e)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update rewrites an owned event.
func (h *CalendarHandler) Update(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req calendarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	e.ID = id
	e.UserID = ac.UserID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Events.Update(ctx, e); {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Delete removes an owned event.
func (h *CalendarHandler) Delete(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Events.Delete(ctx, id, ac.UserID); {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
