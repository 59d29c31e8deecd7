package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/BenefitMap/BenefitMap/internal/repository"
)

// CatalogHandler serves the public benefit catalog. Both endpoints sit
// behind the Redis response cache in the router.
type CatalogHandler struct {
	Benefits *repository.BenefitRepo
}

func NewCatalogHandler(b *repository.BenefitRepo) *CatalogHandler {
	return &CatalogHandler{Benefits: b}
}

// Search filters the catalog. window: "open" (default, currently accepting
// applications), "upcoming" (not yet open), "any".
func (h *CatalogHandler) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}
	tagID, _ := strconv.ParseUint(c.QueryParam("tag_id"), 10, 64)

	q := repository.BenefitSearchQuery{
		Q:        strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Region:   strings.TrimSpace(c.QueryParam("region")),
		TagID:    tagID,
		Window:   strings.ToLower(strings.TrimSpace(c.QueryParam("window"))),
		Page:     page,
		PageSize: ps,
	}

	items, total, err := h.Benefits.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	if items == nil {
		items = []repository.BenefitRow{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

type benefitPart struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	Body      *string `json:"body"`
	Category  string  `json:"category"`
	Region    string  `json:"region"`
	Agency    string  `json:"agency"`
	ApplyURL  string  `json:"apply_url"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Get returns the full detail of one benefit.
func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	b, err := h.Benefits.GetByID(c.Request().Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}

	p := benefitPart{
		ID: b.ID, Title: b.Title, Summary: b.Summary, Body: b.Body,
		Category: b.Category, Region: b.Region, Agency: b.Agency, ApplyURL: b.ApplyURL,
	}
	if b.StartDate != nil {
		s := b.StartDate.Format("2006-01-02")
		p.StartDate = &s
	}
	if b.EndDate != nil {
		s := b.EndDate.Format("2006-01-02")
		p.EndDate = &s
	}
	return c.JSON(http.StatusOK, p)
}
