// Package postgres implements the store interfaces against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates a PostgreSQL implementation of store.UserStore.
// The caller owns the database handle. If logger is nil the process
// default is used.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// WithTx returns a UserStore bound to the given transaction.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	query := `
		INSERT INTO users (id, username, email, password, provider, provider_id, role, setup_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		nullableString(user.HashedPassword),
		user.Provider,
		nullableString(user.ProviderID),
		user.Role,
		user.SetupComplete,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if constraint := uniqueConstraint(err); constraint != "" {
			if strings.Contains(constraint, "username") {
				log.Debug("duplicate username during user creation",
					slog.String("username", user.Username))
				return store.ErrUsernameExists
			}
			log.Debug("duplicate email during user creation",
				slog.String("email", user.Email))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("provider", string(user.Provider)))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, username, email, password, provider, provider_id, role, setup_complete, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password, provider, provider_id, role, setup_complete, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return s.scanUser(ctx, s.db.QueryRowContext(ctx, query, email))
}

// UpdateRole implements store.UserStore.UpdateRole.
func (s *UserStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET role = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, role, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update user role",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// MarkSetupComplete implements store.UserStore.MarkSetupComplete.
func (s *UserStore) MarkSetupComplete(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		result sql.Result
		err    error
	)
	now := time.Now().UTC()
	if role != "" {
		query := `
			UPDATE users
			SET setup_complete = TRUE, role = $1, updated_at = $2
			WHERE id = $3
		`
		result, err = s.db.ExecContext(ctx, query, role, now, id)
	} else {
		query := `
			UPDATE users
			SET setup_complete = TRUE, updated_at = $1
			WHERE id = $2
		`
		result, err = s.db.ExecContext(ctx, query, now, id)
	}

	if err != nil {
		log.Error("failed to mark setup complete",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrUserNotFound)
}

// scanUser reads one user row, mapping nullable columns onto the domain
// entity.
func (s *UserStore) scanUser(ctx context.Context, row *sql.Row) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user domain.User
	var hashedPassword, providerID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&hashedPassword,
		&user.Provider,
		&providerID,
		&user.Role,
		&user.SetupComplete,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to scan user row", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	user.HashedPassword = hashedPassword.String
	user.ProviderID = providerID.String

	return &user, nil
}

// nullableString maps "" to SQL NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
