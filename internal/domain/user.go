package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies how a user authenticates.
type AuthProvider string

// Supported authentication providers. These mirror the auth_provider
// enum in the database.
const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
	ProviderGitHub AuthProvider = "github"
)

// UserRole is the user's global role.
type UserRole string

// Global user roles. Owner is assigned during organization setup.
const (
	RoleUser  UserRole = "user"
	RoleOwner UserRole = "owner"
)

// Common user validation errors.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrInvalidProvider  = errors.New("unknown auth provider")
)

// Minimum and maximum password lengths. The upper bound is bcrypt's
// practical input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a registered user of the application.
// Password holds the plaintext only transiently during registration;
// HashedPassword is what gets persisted. OAuth-only accounts have
// neither: they carry an empty HashedPassword and a non-email provider.
type User struct {
	ID             uuid.UUID    `json:"id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	Password       string       `json:"-"`
	HashedPassword string       `json:"-"`
	Provider       AuthProvider `json:"provider"`
	ProviderID     string       `json:"provider_id,omitempty"`
	Role           UserRole     `json:"role"`
	SetupComplete  bool         `json:"setup_complete"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewUser creates a password-backed user pending registration.
// The caller is responsible for hashing the password before storage.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  password,
		Provider:  ProviderEmail,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NewOAuthUser creates a user provisioned from an OAuth provider.
// OAuth users have no password; the provider vouches for the email.
func NewOAuthUser(provider AuthProvider, providerID, email, username string) (*User, error) {
	if provider != ProviderGoogle && provider != ProviderGitHub {
		return nil, ErrInvalidProvider
	}

	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		Username:   username,
		Email:      email,
		Provider:   provider,
		ProviderID: providerID,
		Role:       RoleUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}

	switch u.Provider {
	case ProviderEmail:
		// Email accounts must carry a password in some form.
		if u.Password != "" {
			if len(u.Password) < MinPasswordLength {
				return ErrPasswordTooShort
			}
			if len(u.Password) > MaxPasswordLength {
				return ErrPasswordTooLong
			}
		} else if u.HashedPassword == "" {
			return ErrEmptyPassword
		}
	case ProviderGoogle, ProviderGitHub:
		// OAuth accounts never have a local password.
	default:
		return ErrInvalidProvider
	}

	return nil
}

// HasPassword reports whether the account can authenticate with a local
// password. OAuth-only accounts return false.
func (u *User) HasPassword() bool {
	return u.HashedPassword != ""
}

// ValidEmail reports whether the email has a plausible mailbox@domain.tld
// shape. Matches the validation the registration endpoint applies.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
