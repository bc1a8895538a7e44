package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/platform/oauth"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// Account setup choices.
const (
	SetupOrganization = "organization"
	SetupPersonal     = "personal"
)

// usernameSuffixAttempts bounds retries when a generated username
// collides during OAuth provisioning.
const usernameSuffixAttempts = 3

// UserService implements registration, login (local and OAuth), and
// account setup.
type UserService struct {
	userStore store.UserStore
	orgStore  store.OrganizationStore
	runTx     store.TxRunner
	jwt       auth.JWTService
	hasher    auth.PasswordHasher
	providers map[string]oauth.Provider
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	userStore store.UserStore,
	orgStore store.OrganizationStore,
	runTx store.TxRunner,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	providers []oauth.Provider,
	log *slog.Logger,
) *UserService {
	if log == nil {
		log = slog.Default()
	}
	byName := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &UserService{
		userStore: userStore,
		orgStore:  orgStore,
		runTx:     runTx,
		jwt:       jwtService,
		hasher:    hasher,
		providers: byName,
		logger:    log.With(slog.String("component", "user_service")),
	}
}

// Register creates a password-backed account and returns it with a
// fresh session token.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateSession(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("email", user.Email))
	return user, token, nil
}

// Login authenticates an email/password pair and returns the user with
// a fresh session token. Unknown email, password-less account, and hash
// mismatch all surface as ErrInvalidCredentials so callers learn
// nothing about which part failed.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login attempt for unknown email")
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.HasPassword() {
		log.Debug("login attempt against password-less account",
			slog.String("user_id", user.ID.String()),
			slog.String("provider", string(user.Provider)))
		return nil, "", auth.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(ctx, user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrEmptyPassword) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}

	token, err := s.jwt.GenerateSession(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// OAuthLogin exchanges an authorization code with the named provider,
// then signs the matching account in or provisions one. An email that
// belongs to an account with a different sign-in method is rejected
// with ErrProviderMismatch; accounts are never linked implicitly.
func (s *UserService) OAuthLogin(ctx context.Context, providerName, code string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	provider, ok := s.providers[providerName]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}

	identity, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%s exchange failed: %w", providerName, err)
	}

	user, err := s.userStore.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if user.Provider != domain.AuthProvider(providerName) {
			log.Warn("OAuth login blocked by provider mismatch",
				slog.String("user_id", user.ID.String()),
				slog.String("account_provider", string(user.Provider)),
				slog.String("attempted_provider", providerName))
			return nil, "", ErrProviderMismatch
		}
	case store.IsNotFoundError(err):
		user, err = s.provisionOAuthUser(ctx, domain.AuthProvider(providerName), identity)
		if err != nil {
			return nil, "", err
		}
		log.Info("user provisioned from OAuth provider",
			slog.String("user_id", user.ID.String()),
			slog.String("provider", providerName))
	default:
		return nil, "", err
	}

	token, err := s.jwt.GenerateSession(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return user, token, nil
}

// provisionOAuthUser creates a password-less account for a verified
// provider identity, retrying with a random suffix when the derived
// username is taken.
func (s *UserService) provisionOAuthUser(ctx context.Context, provider domain.AuthProvider, identity *oauth.Identity) (*domain.User, error) {
	base := usernameFromIdentity(identity)

	username := base
	for attempt := 0; attempt <= usernameSuffixAttempts; attempt++ {
		user, err := domain.NewOAuthUser(provider, identity.ProviderID, identity.Email, username)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}

		err = s.userStore.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrUsernameExists) {
			return nil, err
		}
		username = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
	}

	return nil, store.ErrUsernameExists
}

// usernameFromIdentity derives a username from the provider's display
// name, falling back to the email's local part.
func usernameFromIdentity(identity *oauth.Identity) string {
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = identity.Email
		if at := strings.IndexByte(name, '@'); at > 0 {
			name = name[:at]
		}
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// Setup records the user's post-registration choice. "personal" only
// flips setup_complete. "organization" additionally creates the
// organization with the user as owner, inserts an admin membership, and
// promotes the user's global role, all in one transaction.
func (s *UserService) Setup(ctx context.Context, userID uuid.UUID, choice, organizationName string) (*domain.Organization, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch choice {
	case SetupPersonal:
		if err := s.userStore.MarkSetupComplete(ctx, userID, ""); err != nil {
			return nil, err
		}
		log.Info("personal setup complete", slog.String("user_id", userID.String()))
		return nil, nil

	case SetupOrganization:
		if organizationName == "" {
			return nil, fmt.Errorf("%w: organization name is required", domain.ErrValidation)
		}

		org, err := domain.NewOrganization(organizationName, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}

		membership, err := domain.NewMembership(userID, org.ID, domain.OrgRoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}

		err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			orgs := s.orgStore.WithTx(tx)
			users := s.userStore.WithTx(tx)

			if err := orgs.Create(ctx, org); err != nil {
				return err
			}
			if err := orgs.AddMember(ctx, membership); err != nil {
				return err
			}
			return users.MarkSetupComplete(ctx, userID, domain.RoleOwner)
		})
		if err != nil {
			return nil, err
		}

		log.Info("organization setup complete",
			slog.String("user_id", userID.String()),
			slog.String("organization_id", org.ID.String()))
		return org, nil

	default:
		return nil, ErrSetupChoice
	}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, id)
}
