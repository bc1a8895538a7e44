package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "inviter not admin", err: service.ErrInviterNotAdmin, want: http.StatusForbidden},
		{name: "task not found", err: store.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("context: %w", store.ErrUserNotFound), want: http.StatusNotFound},
		{name: "email exists", err: store.ErrEmailExists, want: http.StatusConflict},
		{name: "already member", err: service.ErrAlreadyMember, want: http.StatusConflict},
		{name: "provider mismatch", err: service.ErrProviderMismatch, want: http.StatusConflict},
		{name: "invalid invitation", err: service.ErrInvalidInvitation, want: http.StatusBadRequest},
		{name: "validation", err: domain.ErrValidation, want: http.StatusBadRequest},
		{name: "unregistered email", err: service.ErrUnregisteredEmail, want: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage_NeverLeaksInternals(t *testing.T) {
	t.Parallel()

	internal := errors.New("pq: connection refused host=10.0.0.5 password=hunter2")
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "hunter2")
}

func TestGetSafeErrorMessage_CredentialFailuresShareMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		GetSafeErrorMessage(auth.ErrInvalidCredentials),
		GetSafeErrorMessage(auth.ErrOAuthOnlyAccount))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
