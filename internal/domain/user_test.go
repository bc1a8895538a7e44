package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid user",
			username: "alice",
			email:    "alice@example.com",
			password: "secret123",
			wantErr:  nil,
		},
		{
			name:     "empty username",
			username: "",
			email:    "alice@example.com",
			password: "secret123",
			wantErr:  domain.ErrEmptyUsername,
		},
		{
			name:     "malformed email",
			username: "alice",
			email:    "not-an-email",
			password: "secret123",
			wantErr:  domain.ErrInvalidEmail,
		},
		{
			name:     "email missing domain dot",
			username: "alice",
			email:    "alice@example",
			password: "secret123",
			wantErr:  domain.ErrInvalidEmail,
		},
		{
			name:     "password too short",
			username: "alice",
			email:    "alice@example.com",
			password: "short",
			wantErr:  domain.ErrPasswordTooShort,
		},
		{
			name:     "empty password",
			username: "alice",
			email:    "alice@example.com",
			password: "",
			wantErr:  domain.ErrEmptyPassword,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := domain.NewUser(tt.username, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, "", user.ID.String())
			assert.Equal(t, domain.ProviderEmail, user.Provider)
			assert.Equal(t, domain.RoleUser, user.Role)
			assert.False(t, user.SetupComplete)
		})
	}
}

func TestNewOAuthUser(t *testing.T) {
	t.Parallel()

	user, err := domain.NewOAuthUser(domain.ProviderGoogle, "g-123", "bob@example.com", "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGoogle, user.Provider)
	assert.False(t, user.HasPassword())

	_, err = domain.NewOAuthUser(domain.ProviderEmail, "", "bob@example.com", "bob")
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestUserHasPassword(t *testing.T) {
	t.Parallel()

	user, err := domain.NewOAuthUser(domain.ProviderGitHub, "gh-9", "eve@example.com", "eve")
	require.NoError(t, err)
	assert.False(t, user.HasPassword())

	user.HashedPassword = "$2a$10$hash"
	assert.True(t, user.HasPassword())
}
