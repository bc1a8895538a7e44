package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// OrganizationStore defines the interface for organization and
// membership persistence. Memberships live here rather than in a store
// of their own because every membership operation is scoped to an
// organization.
type OrganizationStore interface {
	// Create saves a new organization.
	Create(ctx context.Context, org *domain.Organization) error

	// GetByID retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)

	// AddMember inserts a membership row.
	// Returns ErrMemberExists if the user already belongs to the
	// organization.
	AddMember(ctx context.Context, m *domain.Membership) error

	// GetMembership retrieves the membership row for a user in an
	// organization. Returns ErrMembershipNotFound if none exists.
	GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*domain.Membership, error)

	// HasAdmin reports whether the user holds the admin role in the
	// organization or owns it outright.
	HasAdmin(ctx context.Context, userID, organizationID uuid.UUID) (bool, error)

	// WithTx returns a new OrganizationStore bound to the provided
	// transaction.
	WithTx(tx *sql.Tx) OrganizationStore
}
