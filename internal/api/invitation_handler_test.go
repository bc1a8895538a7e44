package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
)

// setupOrgOwner registers a user and completes organization setup,
// returning the user, their token, and the organization.
func setupOrgOwner(t *testing.T, f *apiFixture) (*domain.User, string, *domain.Organization) {
	t.Helper()

	owner, token := f.registerUser(t, "owner", "owner@example.com")
	org, err := f.userService.Setup(context.Background(), owner.ID, service.SetupOrganization, "Acme")
	require.NoError(t, err)
	return owner, token, org
}

func TestInviteEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token, org := setupOrgOwner(t, f)

	rr := f.do(t, http.MethodPost,
		"/api/invite/organizations/"+org.ID.String()+"/invite",
		token,
		InviteRequest{Emails: []string{"bob@example.com", "not-an-email"}})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[InviteResponse](t, rr)
	assert.False(t, resp.Success)
	assert.Len(t, resp.Invitations, 1)
	assert.Equal(t, []string{"not-an-email"}, resp.FailedEmails)
	assert.Len(t, f.mailer.Sent(), 1)

	// The raw token never serializes.
	stored, err := f.invitationService.ListPending(context.Background(), "bob@example.com")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotContains(t, rr.Body.String(), stored[0].Token)
}

func TestInviteEndpoint_NotAdmin(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, _, org := setupOrgOwner(t, f)
	_, memberToken := f.registerUser(t, "mallory", "mallory@example.com")

	rr := f.do(t, http.MethodPost,
		"/api/invite/organizations/"+org.ID.String()+"/invite",
		memberToken,
		InviteRequest{Emails: []string{"bob@example.com"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestInviteEndpoint_Unauthenticated(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, _, org := setupOrgOwner(t, f)

	rr := f.do(t, http.MethodPost,
		"/api/invite/organizations/"+org.ID.String()+"/invite",
		"",
		InviteRequest{Emails: []string{"bob@example.com"}})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInviteEndpoint_EmptyList(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token, org := setupOrgOwner(t, f)

	rr := f.do(t, http.MethodPost,
		"/api/invite/organizations/"+org.ID.String()+"/invite",
		token,
		InviteRequest{Emails: []string{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListInvitationsEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	owner, ownerToken, org := setupOrgOwner(t, f)

	_, bobToken := f.registerUser(t, "bob", "bob@example.com")

	batch, err := f.invitationService.CreateInvitations(
		context.Background(), org.ID, owner.ID, []string{"bob@example.com"})
	require.NoError(t, err)
	require.Len(t, batch.Invitations, 1)

	rr := f.do(t, http.MethodGet, "/api/invite/invitations", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	invitations := decodeBody[[]*domain.Invitation](t, rr)
	require.Len(t, invitations, 1)
	assert.Equal(t, "bob@example.com", invitations[0].Email)

	// No invitations for the owner.
	rr = f.do(t, http.MethodGet, "/api/invite/invitations", ownerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]*domain.Invitation](t, rr))
}

func TestAcceptEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	owner, _, org := setupOrgOwner(t, f)
	bob, _ := f.registerUser(t, "bob", "bob@example.com")

	_, err := f.invitationService.CreateInvitations(
		context.Background(), org.ID, owner.ID, []string{"bob@example.com"})
	require.NoError(t, err)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)

	rr := f.do(t, http.MethodPost, "/api/invite/invitations/accept", sent[0].Claim, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[AcceptInviteResponse](t, rr)
	assert.Equal(t, bob.ID, resp.User.ID)
	assert.Equal(t, org.ID, resp.OrganizationID)
	assert.NotEmpty(t, resp.Token)

	// Second redemption fails: the invitation is spent, so the claim
	// reads as invalid.
	rr = f.do(t, http.MethodPost, "/api/invite/invitations/accept", sent[0].Claim, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAcceptEndpoint_MissingToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/api/invite/invitations/accept", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAcceptEndpoint_GarbageToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rr := f.do(t, http.MethodPost, "/api/invite/invitations/accept", "garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAcceptEndpoint_UnregisteredEmail(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	owner, _, org := setupOrgOwner(t, f)

	_, err := f.invitationService.CreateInvitations(
		context.Background(), org.ID, owner.ID, []string{"stranger@example.com"})
	require.NoError(t, err)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)

	rr := f.do(t, http.MethodPost, "/api/invite/invitations/accept", sent[0].Claim, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
