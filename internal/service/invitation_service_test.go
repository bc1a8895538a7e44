package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

type invitationFixture struct {
	svc         *InvitationService
	invitations *mocks.InvitationStore
	orgs        *mocks.OrganizationStore
	users       *mocks.UserStore
	mailer      *mocks.Mailer
	jwt         auth.JWTService

	org     *domain.Organization
	inviter *domain.User
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()

	jwtSvc, err := auth.NewJWTService([]byte("invitation-test-secret-value!!!!"))
	require.NoError(t, err)

	f := &invitationFixture{
		invitations: mocks.NewInvitationStore(),
		orgs:        mocks.NewOrganizationStore(),
		users:       mocks.NewUserStore(),
		mailer:      mocks.NewMailer(),
		jwt:         jwtSvc,
	}
	f.svc = NewInvitationService(
		f.invitations,
		f.orgs,
		f.users,
		mocks.PassthroughTxRunner(),
		jwtSvc,
		f.mailer,
		slog.Default(),
	)

	inviter, err := domain.NewOAuthUser(domain.ProviderGoogle, "g-admin", "admin@example.com", "admin")
	require.NoError(t, err)
	f.inviter = inviter
	f.users.Seed(inviter)

	org, err := domain.NewOrganization("Acme", inviter.ID)
	require.NoError(t, err)
	f.org = org

	membership, err := domain.NewMembership(inviter.ID, org.ID, domain.OrgRoleAdmin)
	require.NoError(t, err)
	f.orgs.Seed([]*domain.Organization{org}, []*domain.Membership{membership})

	return f
}

// seedRecipient registers a user the invitation can be redeemed by.
func (f *invitationFixture) seedRecipient(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser("recipient", email, "secret1")
	require.NoError(t, err)
	user.HashedPassword = "fake-hash"
	user.Password = ""
	f.users.Seed(user)
	return user
}

// invite creates one invitation and returns its signed claim.
func (f *invitationFixture) invite(t *testing.T, email string) (claim string) {
	t.Helper()
	batch, err := f.svc.CreateInvitations(context.Background(), f.org.ID, f.inviter.ID, []string{email})
	require.NoError(t, err)
	require.Len(t, batch.Invitations, 1)
	require.True(t, batch.Success())

	sent := f.mailer.Sent()
	require.NotEmpty(t, sent)
	return sent[len(sent)-1].Claim
}

func TestCreateInvitations_Batch(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)

	batch, err := f.svc.CreateInvitations(context.Background(), f.org.ID, f.inviter.ID, []string{
		"one@example.com",
		"not-an-email",
		"two@example.com",
	})
	require.NoError(t, err)

	assert.Len(t, batch.Invitations, 2)
	assert.Equal(t, []string{"not-an-email"}, batch.FailedEmails)
	assert.False(t, batch.Success())
	assert.Len(t, f.mailer.Sent(), 2)
	assert.Equal(t, 2, f.invitations.Len())

	for _, inv := range batch.Invitations {
		assert.Equal(t, domain.InvitationPending, inv.Status)
		assert.Len(t, inv.Token, 64)
		assert.WithinDuration(t, time.Now().Add(domain.InvitationTTL), inv.ExpiresAt, time.Minute)
	}
}

func TestCreateInvitations_MailFailureDeletesRow(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	f.mailer.FailFor["broken@example.com"] = assert.AnError

	batch, err := f.svc.CreateInvitations(context.Background(), f.org.ID, f.inviter.ID, []string{
		"one@example.com",
		"broken@example.com",
		"two@example.com",
	})
	require.NoError(t, err)

	assert.Len(t, batch.Invitations, 2)
	assert.Equal(t, []string{"broken@example.com"}, batch.FailedEmails)

	// The failed recipient's row must not linger as a pending invitation.
	assert.Equal(t, 2, f.invitations.Len())
}

func TestCreateInvitations_UnknownOrganization(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)

	_, err := f.svc.CreateInvitations(context.Background(), uuid.New(), f.inviter.ID, []string{"one@example.com"})
	assert.Error(t, err)
}

func TestRedeem_Success(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	user := f.seedRecipient(t, "bob@example.com")
	claim := f.invite(t, "bob@example.com")

	result, err := f.svc.Redeem(context.Background(), claim)
	require.NoError(t, err)

	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, f.org.ID, result.OrganizationID)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.User.SetupComplete)

	membership, err := f.orgs.GetMembership(context.Background(), user.ID, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrgRoleMember, membership.Role)

	claims, err := f.jwt.ValidateSession(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRedeem_SingleUse(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	f.seedRecipient(t, "bob@example.com")
	claim := f.invite(t, "bob@example.com")

	_, err := f.svc.Redeem(context.Background(), claim)
	require.NoError(t, err)

	// The accepted row is no longer pending, so the claim reads as
	// spent regardless of the redeemer's membership.
	_, err = f.svc.Redeem(context.Background(), claim)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
	assert.NotErrorIs(t, err, ErrAlreadyMember)
}

func TestRedeem_RaceLoserSeesSpentInvitation(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	user := f.seedRecipient(t, "bob@example.com")
	claim := f.invite(t, "bob@example.com")

	list, err := f.svc.ListPending(context.Background(), "bob@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	invID := list[0].ID

	// A competing redemption commits between this attempt's reads and
	// its first write. The guarded flip must be that first write, so
	// the loser fails on the spent invitation, not on the membership.
	committed := false
	commitWinner := func() {
		if committed {
			return
		}
		committed = true
		require.NoError(t, f.invitations.MarkAccepted(context.Background(), invID))
		m, err := domain.NewMembership(user.ID, f.org.ID, domain.OrgRoleMember)
		require.NoError(t, err)
		require.NoError(t, f.orgs.AddMember(context.Background(), m))
	}
	f.invitations.MarkAcceptedHook = commitWinner
	f.orgs.AddMemberHook = commitWinner

	_, err = f.svc.Redeem(context.Background(), claim)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
	assert.NotErrorIs(t, err, ErrAlreadyMember)
}

func TestRedeem_ConcurrentAttemptsYieldOneSuccess(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	f.seedRecipient(t, "bob@example.com")
	claim := f.invite(t, "bob@example.com")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(context.Background(), claim)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}

func TestRedeem_Expired(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	f.seedRecipient(t, "bob@example.com")
	claim := f.invite(t, "bob@example.com")

	// Observe the invitation after its expiry.
	f.svc.timeFunc = func() time.Time { return time.Now().Add(domain.InvitationTTL + time.Hour) }

	_, err := f.svc.Redeem(context.Background(), claim)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestRedeem_GarbageClaim(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)

	_, err := f.svc.Redeem(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidInvitation)
	// The token failure stays internal so the API maps this as a bad
	// invitation rather than a bad session.
	assert.NotErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRedeem_SessionTokenRejected(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	user := f.seedRecipient(t, "bob@example.com")

	sessionToken, err := f.jwt.GenerateSession(context.Background(), user)
	require.NoError(t, err)

	_, err = f.svc.Redeem(context.Background(), sessionToken)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestRedeem_UnregisteredEmail(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	claim := f.invite(t, "stranger@example.com")

	_, err := f.svc.Redeem(context.Background(), claim)
	assert.ErrorIs(t, err, ErrUnregisteredEmail)
}

func TestRedeem_InviterLostAdmin(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	f.seedRecipient(t, "bob@example.com")
	claim := f.invite(t, "bob@example.com")

	// The inviter loses admin rights and organization ownership moves
	// elsewhere before redemption.
	f.orgs.RemoveMember(f.inviter.ID, f.org.ID)
	other := uuid.New()
	f.org.OwnerID = other
	f.orgs.Seed([]*domain.Organization{f.org}, nil)

	_, err := f.svc.Redeem(context.Background(), claim)
	assert.ErrorIs(t, err, ErrInviterNotAdmin)
}

func TestListPending_MarksExpired(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)

	fresh, err := domain.NewInvitation(f.org.ID, f.inviter.ID, "bob@example.com")
	require.NoError(t, err)

	stale, err := domain.NewInvitation(f.org.ID, f.inviter.ID, "bob@example.com")
	require.NoError(t, err)
	stale.ExpiresAt = time.Now().Add(-time.Hour)

	accepted, err := domain.NewInvitation(f.org.ID, f.inviter.ID, "bob@example.com")
	require.NoError(t, err)
	accepted.Status = domain.InvitationAccepted

	f.invitations.Seed(fresh, stale, accepted)

	list, err := f.svc.ListPending(context.Background(), "bob@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[uuid.UUID]domain.InvitationStatus{}
	for _, inv := range list {
		byID[inv.ID] = inv.Status
	}
	assert.Equal(t, domain.InvitationPending, byID[fresh.ID])
	// The stale row reads as expired without being written back.
	assert.Equal(t, domain.InvitationExpired, byID[stale.ID])

	stored, err := f.invitations.GetByToken(context.Background(), stale.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, stored.Status)
}
