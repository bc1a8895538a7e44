package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewOrganizationStore creates a PostgreSQL implementation of
// store.OrganizationStore.
func NewOrganizationStore(db store.DBTX, logger *slog.Logger) *OrganizationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationStore{
		db:     db,
		logger: logger.With(slog.String("component", "organization_store")),
	}
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// WithTx returns an OrganizationStore bound to the given transaction.
func (s *OrganizationStore) WithTx(tx *sql.Tx) store.OrganizationStore {
	return &OrganizationStore{db: tx, logger: s.logger}
}

// Create implements store.OrganizationStore.Create.
func (s *OrganizationStore) Create(ctx context.Context, org *domain.Organization) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := org.Validate(); err != nil {
		log.Warn("organization validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO organizations (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		org.ID,
		org.Name,
		org.OwnerID,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create organization",
			slog.String("error", err.Error()),
			slog.String("organization_id", org.ID.String()))
		return MapError(err)
	}

	log.Info("organization created",
		slog.String("organization_id", org.ID.String()),
		slog.String("owner_id", org.OwnerID.String()))
	return nil
}

// GetByID implements store.OrganizationStore.GetByID.
func (s *OrganizationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	var org domain.Organization
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.OwnerID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		log.Error("failed to get organization",
			slog.String("error", err.Error()),
			slog.String("organization_id", id.String()))
		return nil, MapError(err)
	}

	return &org, nil
}

// AddMember implements store.OrganizationStore.AddMember.
func (s *OrganizationStore) AddMember(ctx context.Context, m *domain.Membership) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("membership validation failed",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO user_organizations (user_id, organization_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		m.UserID,
		m.OrganizationID,
		m.Role,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user already a member",
				slog.String("user_id", m.UserID.String()),
				slog.String("organization_id", m.OrganizationID.String()))
			return store.ErrMemberExists
		}
		log.Error("failed to add member",
			slog.String("error", err.Error()),
			slog.String("user_id", m.UserID.String()),
			slog.String("organization_id", m.OrganizationID.String()))
		return MapError(err)
	}

	log.Info("member added",
		slog.String("user_id", m.UserID.String()),
		slog.String("organization_id", m.OrganizationID.String()),
		slog.String("role", string(m.Role)))
	return nil
}

// GetMembership implements store.OrganizationStore.GetMembership.
func (s *OrganizationStore) GetMembership(
	ctx context.Context,
	userID, organizationID uuid.UUID,
) (*domain.Membership, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, organization_id, role, created_at, updated_at
		FROM user_organizations
		WHERE user_id = $1 AND organization_id = $2
	`

	var m domain.Membership
	err := s.db.QueryRowContext(ctx, query, userID, organizationID).Scan(
		&m.UserID,
		&m.OrganizationID,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		log.Error("failed to get membership",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("organization_id", organizationID.String()))
		return nil, MapError(err)
	}

	return &m, nil
}

// HasAdmin implements store.OrganizationStore.HasAdmin. A user is an
// admin when they hold the admin membership role or own the
// organization row itself.
func (s *OrganizationStore) HasAdmin(
	ctx context.Context,
	userID, organizationID uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_organizations
			WHERE user_id = $1 AND organization_id = $2 AND role = 'admin'
		) OR EXISTS (
			SELECT 1 FROM organizations
			WHERE id = $2 AND owner_id = $1
		)
	`

	var isAdmin bool
	if err := s.db.QueryRowContext(ctx, query, userID, organizationID).Scan(&isAdmin); err != nil {
		log.Error("failed to check admin role",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("organization_id", organizationID.String()))
		return false, MapError(err)
	}

	return isAdmin, nil
}
