package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

// BenefitSearchQuery defines filters & pagination for the catalog search.
type BenefitSearchQuery struct {
	Q        string // matches title/summary
	Category string
	Region   string
	TagID    uint64 // interest tag filter, 0 = none
	Window   string // "open" (default), "upcoming", "any"
	Page     int
	PageSize int
}

// BenefitRow is the catalog list projection returned by Search.
type BenefitRow struct {
	ID       uint64  `json:"id"`
	Title    string  `json:"title"`
	Summary  string  `json:"summary"`
	Category string  `json:"category"`
	Region   string  `json:"region"`
	Agency   string  `json:"agency"`
	EndDate  *string `json:"end_date"`
}

type BenefitRepo struct{ DB *sql.DB }

func NewBenefitRepo(db *sql.DB) *BenefitRepo { return &BenefitRepo{DB: db} }

// Search filters the catalog and returns one page plus the total count.
func (r *BenefitRepo) Search(ctx context.Context, q BenefitSearchQuery) ([]BenefitRow, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.Window) {
	case "any":
	case "upcoming":
		where = append(where, "b.start_date IS NOT NULL AND b.start_date > CURDATE()")
	default: // "open": currently accepting applications
		where = append(where, "(b.start_date IS NULL OR b.start_date <= CURDATE())")
		where = append(where, "(b.end_date IS NULL OR b.end_date >= CURDATE())")
	}

	if q.Q != "" {
		where = append(where, "(LOWER(b.title) LIKE ? OR LOWER(b.summary) LIKE ?)")
		pat := "%" + strings.ToLower(q.Q) + "%"
		args = append(args, pat, pat)
	}
	if q.Category != "" {
		where = append(where, "b.category = ?")
		args = append(args, q.Category)
	}
	if q.Region != "" {
		where = append(where, "b.region = ?")
		args = append(args, q.Region)
	}
	if q.TagID != 0 {
		where = append(where, "EXISTS (SELECT 1 FROM benefit_interest_tags bt WHERE bt.benefit_id = b.id AND bt.tag_id = ?)")
		args = append(args, q.TagID)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM benefits b WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT b.id, b.title, b.summary, b.category, b.region, b.agency, b.end_date
		FROM benefits b
		WHERE ` + cond + `
		ORDER BY (b.end_date IS NULL), b.end_date ASC, b.id DESC
		LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, dataSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []BenefitRow
	for rows.Next() {
		var (
			row BenefitRow
			end sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Title, &row.Summary, &row.Category,
			&row.Region, &row.Agency, &end); err != nil {
			return nil, 0, err
		}
		if end.Valid {
			row.EndDate = &end.String
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// GetByID fetches the full benefit detail.
func (r *BenefitRepo) GetByID(ctx context.Context, id uint64) (model.Benefit, error) {
	var (
		b     model.Benefit
		body  sql.NullString
		start sql.NullTime
		end   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, title, summary, body, category, region, agency, apply_url, start_date, end_date, created_at FROM benefits WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.Title, &b.Summary, &body, &b.Category, &b.Region,
		&b.Agency, &b.ApplyURL, &start, &end, &b.CreatedAt)
	if err != nil {
		return model.Benefit{}, err
	}
	if body.Valid {
		s := body.String
		b.Body = &s
	}
	if start.Valid {
		t := start.Time
		b.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		b.EndDate = &t
	}
	return b, nil
}
