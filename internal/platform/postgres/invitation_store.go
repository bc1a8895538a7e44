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

// InvitationStore implements store.InvitationStore using PostgreSQL.
type InvitationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewInvitationStore creates a PostgreSQL implementation of
// store.InvitationStore.
func NewInvitationStore(db store.DBTX, logger *slog.Logger) *InvitationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InvitationStore{
		db:     db,
		logger: logger.With(slog.String("component", "invitation_store")),
	}
}

var _ store.InvitationStore = (*InvitationStore)(nil)

// WithTx returns an InvitationStore bound to the given transaction.
func (s *InvitationStore) WithTx(tx *sql.Tx) store.InvitationStore {
	return &InvitationStore{db: tx, logger: s.logger}
}

// Create implements store.InvitationStore.Create.
func (s *InvitationStore) Create(ctx context.Context, inv *domain.Invitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := inv.Validate(); err != nil {
		log.Warn("invitation validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO invitations (id, organization_id, inviter_id, email, token, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		inv.ID,
		inv.OrganizationID,
		inv.InviterID,
		inv.Email,
		inv.Token,
		inv.Status,
		inv.CreatedAt,
		inv.ExpiresAt,
	)
	if err != nil {
		log.Error("failed to create invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", inv.ID.String()))
		return MapError(err)
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID.String()),
		slog.String("organization_id", inv.OrganizationID.String()))
	return nil
}

// GetByToken implements store.InvitationStore.GetByToken.
func (s *InvitationStore) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, organization_id, inviter_id, email, token, status, created_at, expires_at
		FROM invitations
		WHERE token = $1
	`

	var inv domain.Invitation
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&inv.ID,
		&inv.OrganizationID,
		&inv.InviterID,
		&inv.Email,
		&inv.Token,
		&inv.Status,
		&inv.CreatedAt,
		&inv.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInvitationNotFound
		}
		log.Error("failed to get invitation by token",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &inv, nil
}

// ListPendingByEmail implements store.InvitationStore.ListPendingByEmail.
func (s *InvitationStore) ListPendingByEmail(
	ctx context.Context,
	email string,
) ([]*domain.Invitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, organization_id, inviter_id, email, token, status, created_at, expires_at
		FROM invitations
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		log.Error("failed to list pending invitations",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	invitations := []*domain.Invitation{}
	for rows.Next() {
		var inv domain.Invitation
		err := rows.Scan(
			&inv.ID,
			&inv.OrganizationID,
			&inv.InviterID,
			&inv.Email,
			&inv.Token,
			&inv.Status,
			&inv.CreatedAt,
			&inv.ExpiresAt,
		)
		if err != nil {
			log.Error("failed to scan invitation row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		invitations = append(invitations, &inv)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return invitations, nil
}

// MarkAccepted implements store.InvitationStore.MarkAccepted. The WHERE
// clause requires the stored status to still be pending, so of two
// concurrent redemptions exactly one sees a row affected.
func (s *InvitationStore) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE invitations
		SET status = 'accepted'
		WHERE id = $1 AND status = 'pending'
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to mark invitation accepted",
			slog.String("error", err.Error()),
			slog.String("invitation_id", id.String()))
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrInvitationNotPending)
}

// Delete implements store.InvitationStore.Delete.
func (s *InvitationStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", id.String()))
		return MapError(err)
	}

	return checkRowsAffected(result, store.ErrInvitationNotFound)
}
