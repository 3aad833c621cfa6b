// Package repository contains the pgx implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/symtons/tpahr-auth-service/internal/core/domain"
)

// dbPool is the subset of pgxpool.Pool the repositories use. Declared as
// an interface so tests can substitute a pgxmock pool.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxUserRepository implements domain.UserRepository using pgx.
type PgxUserRepository struct {
	pool dbPool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool dbPool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, salt, role, is_active,
		failed_login_attempts, last_login, lockout_until, created_at, updated_at`

// GetActiveByEmail returns the active user matching the given email,
// compared case-insensitively. Returns (nil, nil) when no active user
// matches.
func (r *PgxUserRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users WHERE LOWER(email) = LOWER($1) AND is_active = TRUE`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// RecordLoginFailure increments the failed-login counter and bumps
// updated_at for the given user.
func (r *PgxUserRepository) RecordLoginFailure(ctx context.Context, id int64) error {
	query := `UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// RecordLoginSuccess resets the failed-login counter and sets last_login
// and updated_at to now for the given user.
func (r *PgxUserRepository) RecordLoginSuccess(ctx context.Context, id int64) error {
	query := `UPDATE users
		SET failed_login_attempts = 0, last_login = NOW(), updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// ExistsByEmail returns true when a user with the given email already
// exists, regardless of active flag.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`

	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts a new active user and returns the generated id.
// A unique violation on the email constraint maps to
// domain.ErrEmailConflict.
func (r *PgxUserRepository) Create(ctx context.Context, email, passwordHash, salt string, role domain.Role) (int64, error) {
	query := `INSERT INTO users (email, password_hash, salt, role)
		VALUES ($1, $2, $3, $4) RETURNING id`

	var userID int64
	err := r.pool.QueryRow(ctx, query, email, passwordHash, salt, string(role)).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, domain.ErrEmailConflict
		}
		return 0, err
	}

	return userID, nil
}

func (r *PgxUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &role, &u.IsActive,
		&u.FailedLoginAttempts, &u.LastLogin, &u.LockoutUntil, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = domain.ParseRole(role)

	return &u, nil
}
