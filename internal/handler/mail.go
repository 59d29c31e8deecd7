package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/auth"
	"github.com/BenefitMap/BenefitMap/internal/mail"
	"github.com/BenefitMap/BenefitMap/internal/queue"
	"github.com/BenefitMap/BenefitMap/internal/repository"
	queue_publisher "github.com/BenefitMap/BenefitMap/internal/service"
)

// MailHandler queues outbound email for the background consumer. Sends are
// restricted to the caller's own registered address so the endpoint cannot be
// used to spam third parties.
type MailHandler struct {
	Users *repository.UserRepo
}

func NewMailHandler(users *repository.UserRepo) *MailHandler {
	return &MailHandler{Users: users}
}

type mailReq struct {
	To        string `json:"to"`   // optional; must be the caller's own address
	Kind      string `json:"kind"` // deadline | generic (welcome is system-only)
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	DetailURL string `json:"detail_url"`
}

// Send publishes a mail.requested event addressed to the caller.
func (h *MailHandler) Send(c echo.Context) error {
	ac, _ := auth.FromEcho(c)

	var req mailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	switch req.Kind {
	case mail.KindDeadline:
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.DueDate) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and due_date required"})
		}
	case mail.KindGeneric, "":
		req.Kind = mail.KindGeneric
		if strings.TrimSpace(req.Subject) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject required"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown kind"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ac.UserID)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if to := strings.ToLower(strings.TrimSpace(req.To)); to != "" && to != u.Email {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "can only mail your own address"})
	}

	event := queue.MailRequestedEvent{
		MessageID:   uuid.NewString(),
		To:          u.Email,
		Kind:        req.Kind,
		Subject:     req.Subject,
		Body:        req.Body,
		Title:       req.Title,
		DueDate:     req.DueDate,
		DetailURL:   req.DetailURL,
		RequestedBy: ac.UserID,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishMailRequested(ctx, event); err != nil {
		c.Logger().Errorf("mail publish failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "mail queue unavailable"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message_id": event.MessageID})
}
