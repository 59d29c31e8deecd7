package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/mail"
	"github.com/BenefitMap/BenefitMap/internal/model"
	"github.com/BenefitMap/BenefitMap/internal/queue"
	"github.com/BenefitMap/BenefitMap/internal/repository"
	queue_publisher "github.com/BenefitMap/BenefitMap/internal/service"
)

// OnboardingHandler serves the tag taxonomy and the onboarding submission
// that moves a fresh PENDING account to ACTIVE.
type OnboardingHandler struct {
	Users    *repository.UserRepo
	Profiles *repository.ProfileRepo
	Tags     *repository.TagRepo
}

func NewOnboardingHandler(u *repository.UserRepo, p *repository.ProfileRepo, t *repository.TagRepo) *OnboardingHandler {
	return &OnboardingHandler{Users: u, Profiles: p, Tags: t}
}

// ListTags returns every taxonomy tag for the onboarding screen. Public:
// the front-end renders the form before login completes.
func (h *OnboardingHandler) ListTags(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tags, err := h.Tags.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	grouped := echo.Map{"interest": []model.Tag{}, "lifecycle": []model.Tag{}, "household": []model.Tag{}}
	for _, t := range tags {
		grouped[t.Kind] = append(grouped[t.Kind].([]model.Tag), t)
	}
	return c.JSON(http.StatusOK, grouped)
}

type onboardingReq struct {
	BirthYear     *uint16            `json:"birth_year"`
	Region        string             `json:"region"`
	HouseholdSize *uint8             `json:"household_size"`
	IncomeBand    string             `json:"income_band"`
	Tags          model.TagSelection `json:"tags"`
}

// Complete stores the onboarding answers and activates the account. Safe to
// resubmit: the profile upserts, the tag selections are replaced wholesale
// and activating an already-active user is a no-op. A welcome mail event is
// published on the first successful completion.
func (h *OnboardingHandler) Complete(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	var req onboardingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Region == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "region required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ac.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	if err := h.Profiles.Upsert(ctx, model.UserProfile{
		UserID:        ac.UserID,
		BirthYear:     req.BirthYear,
		Region:        req.Region,
		HouseholdSize: req.HouseholdSize,
		IncomeBand:    req.IncomeBand,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save profile failed"})
	}
	if err := h.Tags.ReplaceUserTags(ctx, ac.UserID, req.Tags); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "unknown tag id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save tags failed"})
	}

	activated := false
	if u.Status == model.StatusPending {
		if err := h.Users.UpdateStatus(ctx, ac.UserID, model.StatusActive); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activate failed"})
		}
		activated = true

		// Welcome mail is best-effort; the queue logs its own failures.
		_ = queue_publisher.PublishMailRequested(ctx, queue.MailRequestedEvent{
			MessageID:   uuid.NewString(),
			To:          u.Email,
			Kind:        mail.KindWelcome,
			Name:        u.Name,
			RequestedBy: u.ID,
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "activated": activated})
}
