package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// OAuthRequest defines the payload for the OAuth sign-in endpoints.
type OAuthRequest struct {
	Code string `json:"code" validate:"required"`
}

// AuthResponse defines the successful response for authentication
// endpoints.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// SetupRequest defines the payload for the account setup endpoint.
type SetupRequest struct {
	Choice           string `json:"choice"            validate:"required,oneof=organization personal"`
	OrganizationName string `json:"organization_name" validate:"omitempty,max=255"`
}

// SetupResponse defines the successful response for the account setup
// endpoint. Organization is present only for the organization choice.
type SetupResponse struct {
	SetupComplete bool                 `json:"setup_complete"`
	Organization  *domain.Organization `json:"organization,omitempty"`
}

// InviteRequest defines the payload for the batch invitation endpoint.
type InviteRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,max=50,dive,required"`
}

// InviteResponse reports the outcome of a batch invitation.
type InviteResponse struct {
	Success      bool                 `json:"success"`
	Invitations  []*domain.Invitation `json:"invitations"`
	FailedEmails []string             `json:"failed_emails"`
}

// AcceptInviteResponse defines the successful response for invitation
// redemption.
type AcceptInviteResponse struct {
	User           *domain.User `json:"user"`
	Token          string       `json:"token"`
	OrganizationID uuid.UUID    `json:"organization_id"`
}

// TaskRequest defines the payload for task creation and update. Updates
// replace every field; collaborators are only honored on creation.
type TaskRequest struct {
	Title         string      `json:"title"       validate:"required,min=1,max=255"`
	Description   string      `json:"description" validate:"max=10000"`
	Status        string      `json:"status"      validate:"required,oneof=pending in-progress completed"`
	Priority      string      `json:"priority"    validate:"required,oneof=low medium high"`
	DueDate       *time.Time  `json:"due_date,omitempty"`
	Collaborators []uuid.UUID `json:"collaborators,omitempty"`
}
