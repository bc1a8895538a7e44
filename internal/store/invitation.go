package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// InvitationStore defines the interface for invitation persistence.
type InvitationStore interface {
	// Create saves a new pending invitation.
	Create(ctx context.Context, inv *domain.Invitation) error

	// GetByToken retrieves an invitation by its opaque token.
	// Returns ErrInvitationNotFound if none exists.
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)

	// ListPendingByEmail returns all invitations addressed to the given
	// email whose stored status is pending. Rows past their expiry are
	// included; expiry is the caller's to observe.
	ListPendingByEmail(ctx context.Context, email string) ([]*domain.Invitation, error)

	// MarkAccepted transitions the invitation from pending to accepted.
	// The transition is guarded: if the stored status is no longer
	// pending the update affects no rows and ErrInvitationNotPending is
	// returned, making redemption single-use under concurrency.
	MarkAccepted(ctx context.Context, id uuid.UUID) error

	// Delete removes an invitation row. Used to undo a per-recipient
	// insert when mail dispatch fails.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new InvitationStore bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) InvitationStore
}
