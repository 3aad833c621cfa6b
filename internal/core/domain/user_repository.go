package domain

import "context"

// UserRepository defines the data-access contract for user records.
// Implementations live in internal/core/repository; the Logic layer
// depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// GetActiveByEmail returns the active user matching the given email,
	// compared case-insensitively. Returns (nil, nil) when no active
	// user matches.
	GetActiveByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int64) (*User, error)

	// RecordLoginFailure increments the failed-login counter and bumps
	// updated_at for the given user.
	RecordLoginFailure(ctx context.Context, id int64) error

	// RecordLoginSuccess resets the failed-login counter and sets
	// last_login and updated_at to now for the given user.
	RecordLoginSuccess(ctx context.Context, id int64) error

	// ExistsByEmail returns true when a user with the given email
	// already exists, regardless of active flag.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new active user and returns the generated id.
	// Returns ErrEmailConflict when the email is already taken.
	Create(ctx context.Context, email, passwordHash, salt string, role Role) (int64, error)
}
