package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symtons/tpahr-auth-service/internal/core/domain"
)

func newUserMock(t *testing.T) (pgxmock.PgxPoolIface, *PgxUserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func userRows(lastLogin *time.Time) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "salt", "role", "is_active",
		"failed_login_attempts", "last_login", "lockout_until", "created_at", "updated_at",
	}).AddRow(
		int64(7), "admin@tpa.com", "digest", "salt", "admin", true,
		2, lastLogin, (*time.Time)(nil), now, now,
	)
}

func TestPgxUserRepository_GetActiveByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matching active user", func(t *testing.T) {
		mock, repo := newUserMock(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER`).
			WithArgs("Admin@TPA.com").
			WillReturnRows(userRows(nil))

		user, err := repo.GetActiveByEmail(ctx, "Admin@TPA.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.Equal(t, 2, user.FailedLoginAttempts)
		assert.Nil(t, user.LastLogin)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil on no rows", func(t *testing.T) {
		mock, repo := newUserMock(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER`).
			WithArgs("nobody@tpa.com").
			WillReturnError(pgx.ErrNoRows)

		user, err := repo.GetActiveByEmail(ctx, "nobody@tpa.com")
		require.NoError(t, err)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unknown role to RoleUnknown", func(t *testing.T) {
		mock, repo := newUserMock(t)
		now := time.Now()
		rows := pgxmock.NewRows([]string{
			"id", "email", "password_hash", "salt", "role", "is_active",
			"failed_login_attempts", "last_login", "lockout_until", "created_at", "updated_at",
		}).AddRow(
			int64(8), "typo@tpa.com", "digest", "salt", "adminn", true,
			0, (*time.Time)(nil), (*time.Time)(nil), now, now,
		)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER`).
			WithArgs("typo@tpa.com").
			WillReturnRows(rows)

		user, err := repo.GetActiveByEmail(ctx, "typo@tpa.com")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUnknown, user.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		mock, repo := newUserMock(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER`).
			WithArgs("admin@tpa.com").
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetActiveByEmail(ctx, "admin@tpa.com")
		require.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgxUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user", func(t *testing.T) {
		mock, repo := newUserMock(t)
		lastLogin := time.Now().Add(-time.Hour)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE id =`).
			WithArgs(int64(7)).
			WillReturnRows(userRows(&lastLogin))

		user, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, user)
		require.NotNil(t, user.LastLogin)
		assert.WithinDuration(t, lastLogin, *user.LastLogin, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil on no rows", func(t *testing.T) {
		mock, repo := newUserMock(t)
		mock.ExpectQuery(`SELECT .+ FROM users WHERE id =`).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		user, err := repo.GetByID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgxUserRepository_RecordLoginFailure(t *testing.T) {
	mock, repo := newUserMock(t)
	mock.ExpectExec(`failed_login_attempts = failed_login_attempts`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.RecordLoginFailure(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxUserRepository_RecordLoginSuccess(t *testing.T) {
	mock, repo := newUserMock(t)
	mock.ExpectExec(`SET failed_login_attempts = 0, last_login`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.RecordLoginSuccess(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxUserRepository_ExistsByEmail(t *testing.T) {
	mock, repo := newUserMock(t)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("admin@tpa.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "admin@tpa.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxUserRepository_Create(t *testing.T) {
	mock, repo := newUserMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("new@tpa.com", "digest", "salt", "employee").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.Create(context.Background(), "new@tpa.com", "digest", "salt", domain.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgxUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock, repo := newUserMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("taken@tpa.com", "digest", "salt", "employee").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(context.Background(), "taken@tpa.com", "digest", "salt", domain.RoleEmployee)
	assert.ErrorIs(t, err, domain.ErrEmailConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
