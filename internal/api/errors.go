package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrOAuthOnlyAccount):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrInviterNotAdmin):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrProviderMismatch):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidInvitation),
		errors.Is(err, service.ErrUnregisteredEmail),
		errors.Is(err, service.ErrSetupChoice),
		errors.Is(err, service.ErrUnknownProvider):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors. Credential failures share one message so
	// callers cannot probe which part of the pair was wrong.
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrOAuthOnlyAccount):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	// Authorization errors
	case errors.Is(err, service.ErrInviterNotAdmin):
		return "The inviter no longer administers this organization"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrOrganizationNotFound):
		return "Organization not found"
	case errors.Is(err, store.ErrInvitationNotFound):
		return "Invitation not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, service.ErrAlreadyMember):
		return "Already a member of this organization"
	case errors.Is(err, service.ErrProviderMismatch):
		return "Email is registered under a different sign-in method"

	// Bad request errors
	case errors.Is(err, service.ErrInvalidInvitation):
		return "Invitation is invalid or expired"
	case errors.Is(err, service.ErrUnregisteredEmail):
		return "No registered user with the invited email; register first"
	case errors.Is(err, service.ErrSetupChoice):
		return "Setup choice must be \"organization\" or \"personal\""
	case errors.Is(err, service.ErrUnknownProvider):
		return "Unknown OAuth provider"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request data"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validator
// errors and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid list entry"
	default:
		return "validation failed"
	}
}
