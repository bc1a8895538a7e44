package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apimiddleware "github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/service"
)

// InvitationHandler handles organization invitations: batch creation,
// listing, and redemption.
type InvitationHandler struct {
	invitationService *service.InvitationService
	validator         *validator.Validate
}

// NewInvitationHandler creates a new InvitationHandler with the given
// dependencies.
func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		validator:         validator.New(),
	}
}

// Create handles POST /api/invite/organizations/{organizationID}/invite.
// The org-admin gate has already authorized the caller.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := apimiddleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "organizationID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	var req InviteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	batch, err := h.invitationService.CreateInvitations(r.Context(), orgID, userID, req.Emails)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, InviteResponse{
		Success:      batch.Success(),
		Invitations:  batch.Invitations,
		FailedEmails: batch.FailedEmails,
	})
}

// List handles GET /api/invite/invitations: the caller's pending
// invitations, expired ones flagged.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := apimiddleware.GetSession(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	invitations, err := h.invitationService.ListPending(r.Context(), session.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invitations)
}

// Accept handles POST /api/invite/invitations/accept. The bearer token
// on this route is the signed invitation claim from the email link,
// not a session token, so the route sits outside the session
// middleware.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claim, ok := apimiddleware.BearerToken(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invitation token required")
		return
	}

	result, err := h.invitationService.Redeem(r.Context(), claim)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AcceptInviteResponse{
		User:           result.User,
		Token:          result.Token,
		OrganizationID: result.OrganizationID,
	})
}
