package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apimiddleware "github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/platform/oauth"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

// apiFixture wires the handlers onto a router the way the server does,
// backed by in-memory stores.
type apiFixture struct {
	router http.Handler

	users       *mocks.UserStore
	orgs        *mocks.OrganizationStore
	invitations *mocks.InvitationStore
	tasks       *mocks.TaskStore
	mailer      *mocks.Mailer
	google      *mocks.OAuthProvider
	jwt         auth.JWTService

	userService       *service.UserService
	invitationService *service.InvitationService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	jwtSvc, err := auth.NewJWTService([]byte("api-handler-test-secret-value!!!"))
	require.NoError(t, err)

	f := &apiFixture{
		users:       mocks.NewUserStore(),
		orgs:        mocks.NewOrganizationStore(),
		invitations: mocks.NewInvitationStore(),
		tasks:       mocks.NewTaskStore(),
		mailer:      mocks.NewMailer(),
		google:      mocks.NewOAuthProvider("google"),
		jwt:         jwtSvc,
	}

	runTx := mocks.PassthroughTxRunner()
	f.userService = service.NewUserService(
		f.users, f.orgs, runTx, jwtSvc,
		auth.NewBcryptHasher(bcrypt.MinCost),
		[]oauth.Provider{f.google},
		slog.Default(),
	)
	f.invitationService = service.NewInvitationService(
		f.invitations, f.orgs, f.users, runTx, jwtSvc, f.mailer, slog.Default())
	taskService := service.NewTaskService(f.tasks, runTx, slog.Default())

	authHandler := NewAuthHandler(f.userService)
	invitationHandler := NewInvitationHandler(f.invitationService)
	taskHandler := NewTaskHandler(taskService)

	authMiddleware := apimiddleware.NewAuthMiddleware(jwtSvc)
	orgAdmin := apimiddleware.NewOrgAdminMiddleware(f.orgs)

	r := chi.NewRouter()
	r.Use(apimiddleware.TraceMiddleware)
	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register-user", authHandler.Register)
			r.Post("/login-user", authHandler.Login)
			r.Post("/auth/google", authHandler.OAuth("google"))
		})
		r.Route("/invite", func(r chi.Router) {
			r.Post("/invitations/accept", invitationHandler.Accept)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Post("/setup", authHandler.Setup)
				r.Get("/invitations", invitationHandler.List)
				r.Group(func(r chi.Router) {
					r.Use(orgAdmin.RequireAdmin)
					r.Post("/organizations/{organizationID}/invite", invitationHandler.Create)
				})
			})
		})
		r.Route("/task", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/create-task", taskHandler.Create)
			r.Get("/getall-task", taskHandler.List)
			r.Get("/getTask-byId/{id}", taskHandler.Get)
			r.Put("/update-task/{id}", taskHandler.Update)
			r.Delete("/delete-task/{id}", taskHandler.Delete)
		})
	})
	f.router = r

	return f
}

// do performs a request against the fixture's router. A non-empty
// token goes into the Authorization header.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

// registerUser registers an account through the service and returns
// the user with a session token.
func (f *apiFixture) registerUser(t *testing.T, username, email string) (*domain.User, string) {
	t.Helper()
	user, token, err := f.userService.Register(context.Background(), username, email, "secret1")
	require.NoError(t, err)
	return user, token
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}
