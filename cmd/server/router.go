package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taskhub/taskhub-api/internal/api"
	apiMiddleware "github.com/taskhub/taskhub-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(app.userService)
	invitationHandler := api.NewInvitationHandler(app.invitationService)
	taskHandler := api.NewTaskHandler(app.taskService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	orgAdmin := apiMiddleware.NewOrgAdminMiddleware(app.orgStore)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Route("/user", func(r chi.Router) {
			r.Post("/register-user", authHandler.Register)
			r.Post("/login-user", authHandler.Login)
			r.Post("/auth/google", authHandler.OAuth("google"))
			r.Post("/auth/github", authHandler.OAuth("github"))
		})

		r.Route("/invite", func(r chi.Router) {
			// The bearer token here is the invitation claim from the
			// email link, not a session token.
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

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
