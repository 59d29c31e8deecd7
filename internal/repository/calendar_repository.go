package repository

import (
	"context"
	"database/sql"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

// CalendarRepo persists per-user calendar events. Update and Delete verify
// ownership and return ErrForbidden when the row belongs to someone else.
type CalendarRepo struct{ DB *sql.DB }

func NewCalendarRepo(db *sql.DB) *CalendarRepo { return &CalendarRepo{DB: db} }

const calendarColumns = "id, user_id, benefit_id, title, memo, starts_on, ends_on, notify_email, created_at, updated_at"

func scanEvent(scan func(dest ...any) error) (model.CalendarEvent, error) {
	var (
		e       model.CalendarEvent
		benefit sql.NullInt64
		ends    sql.NullTime
	)
	err := scan(&e.ID, &e.UserID, &benefit, &e.Title, &e.Memo, &e.StartsOn,
		&ends, &e.NotifyEmail, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	if benefit.Valid {
		v := uint64(benefit.Int64)
		e.BenefitID = &v
	}
	if ends.Valid {
		t := ends.Time
		e.EndsOn = &t
	}
	return e, nil
}

// Create inserts an event and returns its id.
func (r *CalendarRepo) Create(ctx context.Context, e model.CalendarEvent) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO calendar_events (user_id, benefit_id, title, memo, starts_on, ends_on, notify_email) VALUES (?,?,?,?,?,?,?)",
		e.UserID, e.BenefitID, e.Title, e.Memo, e.StartsOn, e.EndsOn, e.NotifyEmail)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListForUser returns the user's events ordered by start date.
func (r *CalendarRepo) ListForUser(ctx context.Context, userID uint64) ([]model.CalendarEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+calendarColumns+" FROM calendar_events WHERE user_id=? ORDER BY starts_on, id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetOwned fetches one event, enforcing ownership.
func (r *CalendarRepo) GetOwned(ctx context.Context, id, userID uint64) (model.CalendarEvent, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx,
		"SELECT "+calendarColumns+" FROM calendar_events WHERE id=? LIMIT 1", id).Scan)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	if e.UserID != userID {
		return model.CalendarEvent{}, ErrForbidden
	}
	return e, nil
}

// Update rewrites the mutable fields of an owned event.
func (r *CalendarRepo) Update(ctx context.Context, e model.CalendarEvent) error {
	if _, err := r.GetOwned(ctx, e.ID, e.UserID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE calendar_events SET title=?, memo=?, starts_on=?, ends_on=?, notify_email=? WHERE id=? AND user_id=?",
		e.Title, e.Memo, e.StartsOn, e.EndsOn, e.NotifyEmail, e.ID, e.UserID)
	return err
}

// Delete removes an owned event.
func (r *CalendarRepo) Delete(ctx context.Context, id, userID uint64) error {
	if _, err := r.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM calendar_events WHERE id=? AND user_id=?", id, userID)
	return err
}
