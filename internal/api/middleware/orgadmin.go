package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/store"
)

// OrgAdminMiddleware gates routes on organization admin rights. It
// must run after Authenticate, and expects an {organizationID} URL
// parameter.
type OrgAdminMiddleware struct {
	orgStore store.OrganizationStore
}

// NewOrgAdminMiddleware creates a new OrgAdminMiddleware.
func NewOrgAdminMiddleware(orgStore store.OrganizationStore) *OrgAdminMiddleware {
	return &OrgAdminMiddleware{orgStore: orgStore}
}

// RequireAdmin rejects callers who neither administer nor own the
// organization named in the URL.
func (m *OrgAdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		orgID, err := uuid.Parse(chi.URLParam(r, "organizationID"))
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid organization ID")
			return
		}

		isAdmin, err := m.orgStore.HasAdmin(r.Context(), userID, orgID)
		if err != nil {
			slog.Error("failed to check organization admin",
				"error", err,
				"user_id", userID,
				"organization_id", orgID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authorize request")
			return
		}
		if !isAdmin {
			shared.RespondWithError(w, r, http.StatusForbidden, "Organization admin rights required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
