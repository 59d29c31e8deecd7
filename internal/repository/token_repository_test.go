package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

const tokenCols = "id, user_id, token_hash, expires_at, revoked_at, created_at"

func TestTokenRepoStore(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	exp := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(1), "abc123", exp).
		WillReturnResult(sqlmock.NewResult(5, 1))

	err := repo.Store(context.Background(), 1, "abc123", exp)
	assert.NoError(t, err)
}

func TestTokenRepoFindByHash(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT "+tokenCols+" FROM refresh_tokens WHERE token_hash=").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
			AddRow(5, 1, "abc123", now.Add(time.Hour), nil, now))

	rec, err := repo.FindByHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), rec.ID)
	assert.Equal(t, uint64(1), rec.UserID)
	assert.Nil(t, rec.RevokedAt)
}

func TestTokenRepoFindByHashRevoked(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT " + tokenCols + " FROM refresh_tokens WHERE token_hash=").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
			AddRow(5, 1, "abc123", now.Add(time.Hour), now, now))

	rec, err := repo.FindByHash(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, rec.RevokedAt)
}

func TestTokenRepoFindByHashMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT " + tokenCols + " FROM refresh_tokens WHERE token_hash=").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByHash(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenRepoDeleteByHash(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash=").
		WithArgs("abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash=").
		WithArgs("abc123").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.DeleteByHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Deleting again affects nothing and is still no error.
	n, err = repo.DeleteByHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTokenRepoRevokeAllForUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE user_id=").
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.RevokeAllForUser(context.Background(), 9)
	assert.NoError(t, err)
}

func TestTokenRepoFindActiveForUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT "+tokenCols+" FROM refresh_tokens WHERE user_id=").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
			AddRow(2, 1, "h2", now.Add(2*time.Hour), nil, now).
			AddRow(1, 1, "h1", now.Add(time.Hour), nil, now))

	recs, err := repo.FindActiveForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "h2", recs[0].TokenHash)
}
