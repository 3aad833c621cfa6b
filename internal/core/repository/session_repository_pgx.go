package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/symtons/tpahr-auth-service/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgx.
type PgxSessionRepository struct {
	pool dbPool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool dbPool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Insert appends a new session record. A unique violation on the token
// column is reported as domain.ErrTokenConflict.
func (r *PgxSessionRepository) Insert(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (user_id, token, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		session.UserID, session.Token, session.ExpiresAt, session.IsActive, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrTokenConflict
		}
		return err
	}

	return nil
}

// FindActiveByToken returns the active session matching the token
// exactly. Expiry is not evaluated here; the caller applies the time
// check. Returns (nil, nil) when no active session matches.
func (r *PgxSessionRepository) FindActiveByToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT id, user_id, token, expires_at, is_active, created_at
		FROM sessions WHERE token = $1 AND is_active = TRUE`

	var s domain.Session
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &s, nil
}

// Deactivate sets is_active = false for the matching active session and
// reports whether a record was updated. Sessions are retained for audit;
// nothing is deleted.
func (r *PgxSessionRepository) Deactivate(ctx context.Context, token string) (bool, error) {
	query := `UPDATE sessions SET is_active = FALSE
		WHERE token = $1 AND is_active = TRUE`

	tag, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
