package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/platform/mail"
	"github.com/taskhub/taskhub-api/internal/platform/oauth"
	"github.com/taskhub/taskhub-api/internal/platform/postgres"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// application holds the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	orgStore  store.OrganizationStore

	jwtService        auth.JWTService
	userService       *service.UserService
	invitationService *service.InvitationService
	taskService       *service.TaskService
}

// newApplication wires every component: logger, database, stores,
// platform clients, and services.
func newApplication(cfg *config.Config) (*application, error) {
	log := logger.Setup(cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db, log); err != nil {
		closeDatabase(db, log)
		return nil, err
	}

	userStore := postgres.NewUserStore(db, log)
	orgStore := postgres.NewOrganizationStore(db, log)
	invitationStore := postgres.NewInvitationStore(db, log)
	taskStore := postgres.NewTaskStore(db, log)
	runTx := store.NewTxRunner(db)

	jwtService, err := auth.NewJWTService([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		closeDatabase(db, log)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	providers := setupOAuthProviders(cfg)
	mailer := setupMailer(cfg, log)

	userService := service.NewUserService(
		userStore, orgStore, runTx, jwtService, hasher, providers, log)
	invitationService := service.NewInvitationService(
		invitationStore, orgStore, userStore, runTx, jwtService, mailer, log)
	taskService := service.NewTaskService(taskStore, runTx, log)

	return &application{
		config:            cfg,
		logger:            log,
		db:                db,
		userStore:         userStore,
		orgStore:          orgStore,
		jwtService:        jwtService,
		userService:       userService,
		invitationService: invitationService,
		taskService:       taskService,
	}, nil
}

// setupOAuthProviders registers every provider with configured
// credentials.
func setupOAuthProviders(cfg *config.Config) []oauth.Provider {
	providers := []oauth.Provider{}
	if cfg.OAuth.GoogleClientID != "" {
		providers = append(providers, oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		}))
	}
	if cfg.OAuth.GitHubClientID != "" {
		providers = append(providers, oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID:     cfg.OAuth.GitHubClientID,
			ClientSecret: cfg.OAuth.GitHubClientSecret,
		}))
	}
	return providers
}

// setupMailer picks SMTP delivery when a relay is configured, log-only
// delivery otherwise.
func setupMailer(cfg *config.Config, log *slog.Logger) mail.Mailer {
	if cfg.Mail.SMTPHost == "" {
		log.Warn("no SMTP relay configured; invitation mail will only be logged")
		return mail.NewLogMailer(log)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:      cfg.Mail.SMTPHost,
		Port:      cfg.Mail.SMTPPort,
		Username:  cfg.Mail.SMTPUsername,
		Password:  cfg.Mail.SMTPPassword,
		From:      cfg.Mail.From,
		ClientURL: cfg.Server.ClientURL,
	}, log)
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	closeDatabase(app.db, app.logger)
}

func closeDatabase(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database connection", "error", err)
	}
}
