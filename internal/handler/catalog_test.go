package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenefitMap/BenefitMap/internal/repository"
)

func TestCatalogSearchClampsPaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewCatalogHandler(repository.NewBenefitRepo(db))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM benefits b`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// page_size above the cap collapses to 100, page below 1 to the first page.
	mock.ExpectQuery(`SELECT b\.id, .* FROM benefits b`).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "summary", "category", "region", "agency", "end_date"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/catalog/search?page=0&page_size=5000", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/catalog/search")

	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var body struct {
		Data     []repository.BenefitRow `json:"data"`
		Total    int64                   `json:"total"`
		Page     int                     `json:"page"`
		PageSize int                     `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 100, body.PageSize)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
}

func TestCatalogGetInvalidID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewCatalogHandler(repository.NewBenefitRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/catalog/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/catalog/:id")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewCatalogHandler(repository.NewBenefitRepo(db))

	mock.ExpectQuery("SELECT .+ FROM benefits WHERE id=").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/catalog/404", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/catalog/:id")
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
