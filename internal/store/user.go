package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The HashedPassword must
	// already be set for password-backed accounts.
	// Returns ErrEmailExists or ErrUsernameExists on uniqueness
	// violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateRole sets the user's global role.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error

	// MarkSetupComplete flips the user's setup_complete flag and,
	// when role is non-empty, updates the global role in the same
	// statement.
	// Returns ErrUserNotFound if the user does not exist.
	MarkSetupComplete(ctx context.Context, id uuid.UUID, role domain.UserRole) error

	// WithTx returns a new UserStore bound to the provided transaction,
	// letting multiple operations share one atomic scope.
	WithTx(tx *sql.Tx) UserStore
}
