package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenefitMap/BenefitMap/internal/model"
)

func userRows(u model.User) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "provider", "provider_id", "email", "name", "avatar_url",
		"role", "status", "last_login_at", "created_at", "updated_at",
	}).AddRow(u.ID, u.Provider, u.ProviderID, u.Email, u.Name, u.AvatarURL,
		u.Role, u.Status, nil, now, now)
}

func TestUserRepoGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(1)).
		WillReturnRows(userRows(model.User{
			ID: 1, Provider: "google", ProviderID: "sub-1",
			Email: "a@example.com", Role: model.RoleUser, Status: model.StatusActive,
		}))

	u, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, model.StatusActive, u.Status)
	assert.Nil(t, u.LastLoginAt)
}

func TestUserRepoGetByEmailNormalizes(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("a@example.com").
		WillReturnRows(userRows(model.User{ID: 1, Email: "a@example.com"}))

	// Mixed case and whitespace collapse to the stored form.
	_, err := repo.GetByEmail(context.Background(), "  A@Example.COM ")
	assert.NoError(t, err)
}

func TestUserRepoGetByProviderMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE provider=").
		WithArgs("google", "sub-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByProvider(context.Background(), "google", "sub-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("google", "sub-1", "a@example.com", "A", "", model.RoleUser, model.StatusPending).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), model.User{
		Provider: "google", ProviderID: "sub-1", Email: "A@Example.com ",
		Name: "A", Role: model.RoleUser, Status: model.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestUserRepoCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'a@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), model.User{
		Provider: "google", ProviderID: "sub-1", Email: "a@example.com",
		Role: model.RoleUser, Status: model.StatusPending,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepoUpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET status=").
		WithArgs(model.StatusSuspended, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), 3, model.StatusSuspended)
	assert.NoError(t, err)
}
