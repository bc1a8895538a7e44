package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// SessionClaims are the verified contents of a session token.
type SessionClaims struct {
	UserID uuid.UUID
	Email  string
	Role   domain.UserRole
}

// InvitationClaims are the verified contents of an invitation token.
// Token is the opaque invitation secret that must also match the
// invitation row; the row remains the source of truth for status and
// expiry.
type InvitationClaims struct {
	Email          string
	OrganizationID uuid.UUID
	Token          string
	Role           domain.OrgRole
}

// JWTService issues and verifies the two token kinds the API uses:
// session tokens for authenticated requests and invitation tokens
// embedded in invitation email.
type JWTService interface {
	// GenerateSession creates a signed session token for the user.
	GenerateSession(ctx context.Context, user *domain.User) (string, error)

	// ValidateSession verifies a session token and returns its claims.
	// Returns ErrExpiredToken, ErrWrongTokenType or ErrInvalidToken on
	// failure.
	ValidateSession(ctx context.Context, tokenString string) (*SessionClaims, error)

	// GenerateInvitation creates a signed invitation token for the
	// given invitation.
	GenerateInvitation(ctx context.Context, inv *domain.Invitation, role domain.OrgRole) (string, error)

	// ValidateInvitation verifies an invitation token and returns its
	// claims. Returns ErrExpiredToken, ErrWrongTokenType or
	// ErrInvalidToken on failure.
	ValidateInvitation(ctx context.Context, tokenString string) (*InvitationClaims, error)
}
