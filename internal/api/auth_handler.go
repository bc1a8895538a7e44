// Package api implements the HTTP handlers, request/response models
// and error mapping for the JSON API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	apimiddleware "github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// AuthHandler handles registration, login, OAuth sign-in and account
// setup.
type AuthHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// Register handles POST /api/user/register-user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, token, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login handles POST /api/user/login-user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures share one status and message.
		logAuthFailure(r, err)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
}

// OAuth returns a handler for POST /api/user/auth/{provider}, bound to
// one provider name at route registration.
func (h *AuthHandler) OAuth(providerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OAuthRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}

		user, token, err := h.userService.OAuthLogin(r.Context(), providerName, req.Code)
		if err != nil {
			status := MapErrorToStatusCode(err)
			message := GetSafeErrorMessage(err)
			// Upstream exchange failures are the provider's problem,
			// not the caller's.
			if status == http.StatusInternalServerError {
				message = "OAuth sign-in failed"
			}
			shared.RespondWithErrorAndLog(w, r, status, message, err)
			return
		}

		shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
	}
}

// Setup handles POST /api/invite/setup.
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := apimiddleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SetupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	org, err := h.userService.Setup(r.Context(), userID, req.Choice, req.OrganizationName)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// An authenticated caller whose row is gone is a stale token.
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	status := http.StatusOK
	if org != nil {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, SetupResponse{SetupComplete: true, Organization: org})
}

// logAuthFailure logs repeated authentication failures at WARN for
// operational visibility without changing the response.
func logAuthFailure(r *http.Request, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("authentication failure",
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))
	}
}
