package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

const userColumns = "id, COALESCE(provider,''), COALESCE(provider_id,''), email, name, avatar_url, role, status, last_login_at, created_at, updated_at"

// UserRepo persists application users. Accounts come from social login
// only, so there is no password handling here.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u     model.User
		login sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Provider, &u.ProviderID, &u.Email, &u.Name,
		&u.AvatarURL, &u.Role, &u.Status, &login, &u.CreatedAt, &u.UpdatedAt)
	if login.Valid {
		t := login.Time
		u.LastLoginAt = &t
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByProvider fetches a user by its external identity pair.
func (r *UserRepo) GetByProvider(ctx context.Context, provider, providerID string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider=? AND provider_id=? LIMIT 1",
		provider, providerID))
}

// Create inserts a user and returns its id. Duplicate email maps to
// ErrConflict (MySQL error 1062).
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (provider, provider_id, email, name, avatar_url, role, status, last_login_at) VALUES (?,?,?,?,?,?,?,NOW())",
		u.Provider, u.ProviderID, strings.ToLower(strings.TrimSpace(u.Email)),
		u.Name, u.AvatarURL, u.Role, u.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateOAuthProfile refreshes the provider linkage and display fields on
// login and bumps last_login_at. Email is deliberately not touched; it is
// the merge key across providers.
func (r *UserRepo) UpdateOAuthProfile(ctx context.Context, id uint64, provider, providerID, name, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET provider=?, provider_id=?, name=?, avatar_url=?, last_login_at=NOW() WHERE id=?",
		provider, providerID, name, avatarURL, id)
	return err
}

// UpdateBasics applies a self-service profile edit (name / avatar).
func (r *UserRepo) UpdateBasics(ctx context.Context, id uint64, name, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, avatar_url=? WHERE id=?", name, avatarURL, id)
	return err
}

// UpdateStatus moves a user between PENDING, ACTIVE and SUSPENDED.
func (r *UserRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET status=? WHERE id=?", status, id)
	return err
}

// Delete removes a user. Refresh tokens, profile and tag selections go with
// it via ON DELETE CASCADE. Deleting an absent user is a no-op.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

// List returns users for the admin screen, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var (
			u     model.User
			login sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Provider, &u.ProviderID, &u.Email, &u.Name,
			&u.AvatarURL, &u.Role, &u.Status, &login, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if login.Valid {
			t := login.Time
			u.LastLoginAt = &t
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
