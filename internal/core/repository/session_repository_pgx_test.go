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

func newSessionMock(t *testing.T) (pgxmock.PgxPoolIface, *PgxSessionRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewSessionRepository(mock)
}

func testSession() *domain.Session {
	now := time.Now()
	return &domain.Session{
		UserID:    7,
		Token:     "opaque-token",
		ExpiresAt: now.Add(8 * time.Hour),
		IsActive:  true,
		CreatedAt: now,
	}
}

func TestPgxSessionRepository_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts and backfills the generated id", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		session := testSession()
		mock.ExpectQuery(`INSERT INTO sessions`).
			WithArgs(session.UserID, session.Token, session.ExpiresAt, session.IsActive, session.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

		require.NoError(t, repo.Insert(ctx, session))
		assert.Equal(t, int64(3), session.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to ErrTokenConflict", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		session := testSession()
		mock.ExpectQuery(`INSERT INTO sessions`).
			WithArgs(session.UserID, session.Token, session.ExpiresAt, session.IsActive, session.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "sessions_token_key"})

		err := repo.Insert(ctx, session)
		require.ErrorIs(t, err, domain.ErrTokenConflict)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates other storage errors", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		session := testSession()
		mock.ExpectQuery(`INSERT INTO sessions`).
			WithArgs(session.UserID, session.Token, session.ExpiresAt, session.IsActive, session.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		err := repo.Insert(ctx, session)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrTokenConflict)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgxSessionRepository_FindActiveByToken(t *testing.T) {
	ctx := context.Background()

	t.Run("returns active session", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		now := time.Now()
		rows := pgxmock.NewRows([]string{"id", "user_id", "token", "expires_at", "is_active", "created_at"}).
			AddRow(int64(3), int64(7), "opaque-token", now.Add(8*time.Hour), true, now)
		mock.ExpectQuery(`SELECT .+ FROM sessions WHERE token =`).
			WithArgs("opaque-token").
			WillReturnRows(rows)

		session, err := repo.FindActiveByToken(ctx, "opaque-token")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, int64(7), session.UserID)
		assert.True(t, session.IsActive)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when no active session matches", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		mock.ExpectQuery(`SELECT .+ FROM sessions WHERE token =`).
			WithArgs("stale-token").
			WillReturnError(pgx.ErrNoRows)

		session, err := repo.FindActiveByToken(ctx, "stale-token")
		require.NoError(t, err)
		assert.Nil(t, session)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgxSessionRepository_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("reports true when a session was deactivated", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		mock.ExpectExec(`UPDATE sessions SET is_active = FALSE`).
			WithArgs("opaque-token").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		deactivated, err := repo.Deactivate(ctx, "opaque-token")
		require.NoError(t, err)
		assert.True(t, deactivated)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports false for unknown or inactive tokens", func(t *testing.T) {
		mock, repo := newSessionMock(t)
		mock.ExpectExec(`UPDATE sessions SET is_active = FALSE`).
			WithArgs("stale-token").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		deactivated, err := repo.Deactivate(ctx, "stale-token")
		require.NoError(t, err)
		assert.False(t, deactivated)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
