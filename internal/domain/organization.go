package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// OrgRole is a user's role within a single organization.
type OrgRole string

// Organization membership roles. These mirror the org_role enum in the
// database.
const (
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

// Organization validation errors.
var (
	ErrEmptyOrganizationID   = errors.New("organization ID cannot be empty")
	ErrEmptyOrganizationName = errors.New("organization name cannot be empty")
	ErrEmptyOwnerID          = errors.New("organization owner ID cannot be empty")
	ErrInvalidOrgRole        = errors.New("invalid organization role")
)

// Organization is a team that users join through invitations.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrganization creates an organization owned by the given user.
func NewOrganization(name string, ownerID uuid.UUID) (*Organization, error) {
	now := time.Now().UTC()
	org := &Organization{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := org.Validate(); err != nil {
		return nil, err
	}

	return org, nil
}

// Validate checks if the Organization has valid data.
func (o *Organization) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyOrganizationID
	}
	if o.Name == "" {
		return ErrEmptyOrganizationName
	}
	if o.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}
	return nil
}

// Membership links a user to an organization with a role.
// The (UserID, OrganizationID) pair is unique.
type Membership struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           OrgRole   `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewMembership creates a membership row for the given user and
// organization.
func NewMembership(userID, organizationID uuid.UUID, role OrgRole) (*Membership, error) {
	now := time.Now().UTC()
	m := &Membership{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the Membership has valid data.
func (m *Membership) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if m.OrganizationID == uuid.Nil {
		return ErrEmptyOrganizationID
	}
	if m.Role != OrgRoleAdmin && m.Role != OrgRoleMember {
		return ErrInvalidOrgRole
	}
	return nil
}

// IsAdmin reports whether the membership grants admin privileges.
func (m *Membership) IsAdmin() bool {
	return m.Role == OrgRoleAdmin
}
