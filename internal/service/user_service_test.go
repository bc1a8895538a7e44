package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/platform/oauth"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

type userServiceFixture struct {
	svc    *UserService
	users  *mocks.UserStore
	orgs   *mocks.OrganizationStore
	jwt    auth.JWTService
	google *mocks.OAuthProvider
	github *mocks.OAuthProvider
}

func newUserServiceFixture(t *testing.T) *userServiceFixture {
	t.Helper()

	jwtSvc, err := auth.NewJWTService([]byte("user-service-test-secret-value!!"))
	require.NoError(t, err)

	f := &userServiceFixture{
		users:  mocks.NewUserStore(),
		orgs:   mocks.NewOrganizationStore(),
		jwt:    jwtSvc,
		google: mocks.NewOAuthProvider("google"),
		github: mocks.NewOAuthProvider("github"),
	}
	f.svc = NewUserService(
		f.users,
		f.orgs,
		mocks.PassthroughTxRunner(),
		jwtSvc,
		auth.NewBcryptHasher(bcrypt.MinCost),
		[]oauth.Provider{f.google, f.github},
		slog.Default(),
	)
	return f
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	user, token, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.ProviderEmail, user.Provider)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.False(t, user.SetupComplete)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "secret1", user.HashedPassword)

	claims, err := f.jwt.ValidateSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestUserService_Register_Invalid(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "malformed email", username: "alice", email: "not-an-email", password: "secret1"},
		{name: "short password", username: "alice", email: "alice@example.com", password: "12345"},
		{name: "empty username", username: "", email: "alice@example.com", password: "secret1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Register(context.Background(), tc.username, tc.email, tc.password)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	_, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = f.svc.Register(context.Background(), "alice2", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	registered, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	user, token, err := f.svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := f.jwt.ValidateSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestUserService_Login_FailuresIndistinguishable(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	_, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	oauthUser, err := domain.NewOAuthUser(domain.ProviderGoogle, "g-1", "carol@example.com", "carol")
	require.NoError(t, err)
	f.users.Seed(oauthUser)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "secret1"},
		{name: "wrong password", email: "alice@example.com", password: "wrong-pass"},
		{name: "password-less account", email: "carol@example.com", password: "secret1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Login(context.Background(), tc.email, tc.password)
			// Every failure mode yields the same error.
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestUserService_OAuthLogin_ProvisionsNewUser(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	f.google.Identities["code-1"] = &oauth.Identity{
		ProviderID: "google-123",
		Email:      "bob@example.com",
		Name:       "Bob Builder",
	}

	user, token, err := f.svc.OAuthLogin(context.Background(), "google", "code-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, domain.ProviderGoogle, user.Provider)
	assert.Equal(t, "google-123", user.ProviderID)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, "bob-builder", user.Username)
	assert.False(t, user.HasPassword())

	// Second login with the same identity returns the same account.
	again, _, err := f.svc.OAuthLogin(context.Background(), "google", "code-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestUserService_OAuthLogin_ProviderMismatch(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	_, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	f.google.Identities["code-1"] = &oauth.Identity{
		ProviderID: "google-123",
		Email:      "alice@example.com",
	}

	_, _, err = f.svc.OAuthLogin(context.Background(), "google", "code-1")
	assert.ErrorIs(t, err, ErrProviderMismatch)
}

func TestUserService_OAuthLogin_UnknownProvider(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	_, _, err := f.svc.OAuthLogin(context.Background(), "gitlab", "code-1")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestUserService_OAuthLogin_ExchangeFailure(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	_, _, err := f.svc.OAuthLogin(context.Background(), "github", "bad-code")
	assert.ErrorIs(t, err, oauth.ErrExchangeFailed)
}

func TestUserService_Setup_Personal(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	user, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	org, err := f.svc.Setup(context.Background(), user.ID, SetupPersonal, "")
	require.NoError(t, err)
	assert.Nil(t, org)

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.SetupComplete)
	assert.Equal(t, domain.RoleUser, updated.Role)
}

func TestUserService_Setup_Organization(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	user, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	org, err := f.svc.Setup(context.Background(), user.ID, SetupOrganization, "Acme")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "Acme", org.Name)
	assert.Equal(t, user.ID, org.OwnerID)

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.SetupComplete)
	assert.Equal(t, domain.RoleOwner, updated.Role)

	membership, err := f.orgs.GetMembership(context.Background(), user.ID, org.ID)
	require.NoError(t, err)
	assert.True(t, membership.IsAdmin())
}

func TestUserService_Setup_OrganizationStepFailureStopsSetup(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)
	user, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	f.orgs.AddMemberErr = assert.AnError

	_, err = f.svc.Setup(context.Background(), user.ID, SetupOrganization, "Acme")
	require.Error(t, err)

	// The user must not be marked set up when a step inside the
	// transaction failed.
	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, updated.SetupComplete)
	assert.Equal(t, domain.RoleUser, updated.Role)
}

func TestUserService_Setup_InvalidChoice(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	_, err := f.svc.Setup(context.Background(), uuid.New(), "team", "")
	assert.ErrorIs(t, err, ErrSetupChoice)
}

func TestUserService_Setup_OrganizationRequiresName(t *testing.T) {
	t.Parallel()

	f := newUserServiceFixture(t)

	_, err := f.svc.Setup(context.Background(), uuid.New(), SetupOrganization, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
