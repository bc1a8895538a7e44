package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/platform/mail"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// InvitationBatch reports the outcome of a batch invite: invitations
// that were stored and mailed, and the emails that failed.
type InvitationBatch struct {
	Invitations  []*domain.Invitation
	FailedEmails []string
}

// Success reports whether every recipient was invited.
func (b *InvitationBatch) Success() bool {
	return len(b.FailedEmails) == 0
}

// RedeemResult is what a successful invitation redemption yields: the
// joined user, a fresh session token, and the organization joined.
type RedeemResult struct {
	User           *domain.User
	Token          string
	OrganizationID uuid.UUID
}

// InvitationService implements organization invitations: batch
// creation with mail dispatch, listing, and redemption.
type InvitationService struct {
	invStore  store.InvitationStore
	orgStore  store.OrganizationStore
	userStore store.UserStore
	runTx     store.TxRunner
	jwt       auth.JWTService
	mailer    mail.Mailer
	logger    *slog.Logger
	// timeFunc returns the current time; injectable for tests.
	timeFunc func() time.Time
}

// NewInvitationService creates an InvitationService.
func NewInvitationService(
	invStore store.InvitationStore,
	orgStore store.OrganizationStore,
	userStore store.UserStore,
	runTx store.TxRunner,
	jwtService auth.JWTService,
	mailer mail.Mailer,
	log *slog.Logger,
) *InvitationService {
	if log == nil {
		log = slog.Default()
	}
	return &InvitationService{
		invStore:  invStore,
		orgStore:  orgStore,
		userStore: userStore,
		runTx:     runTx,
		jwt:       jwtService,
		mailer:    mailer,
		logger:    log.With(slog.String("component", "invitation_service")),
		timeFunc:  time.Now,
	}
}

// CreateInvitations invites each email to the organization. Recipients
// are isolated: one failed address never aborts the batch, and a row
// whose mail could not be dispatched is deleted so no orphaned pending
// invitation survives.
func (s *InvitationService) CreateInvitations(ctx context.Context, organizationID, inviterID uuid.UUID, emails []string) (*InvitationBatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	org, err := s.orgStore.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	batch := &InvitationBatch{
		Invitations:  []*domain.Invitation{},
		FailedEmails: []string{},
	}

	for _, email := range emails {
		inv, err := s.inviteOne(ctx, org, inviterID, email)
		if err != nil {
			log.Warn("failed to invite recipient",
				slog.String("email", email),
				slog.String("organization_id", organizationID.String()),
				slog.String("error", err.Error()))
			batch.FailedEmails = append(batch.FailedEmails, email)
			continue
		}
		batch.Invitations = append(batch.Invitations, inv)
	}

	log.Info("invitation batch processed",
		slog.String("organization_id", organizationID.String()),
		slog.Int("succeeded", len(batch.Invitations)),
		slog.Int("failed", len(batch.FailedEmails)))
	return batch, nil
}

// inviteOne stores a single invitation, signs its claim and mails it.
// The stored row is deleted again if signing or mailing fails.
func (s *InvitationService) inviteOne(ctx context.Context, org *domain.Organization, inviterID uuid.UUID, email string) (*domain.Invitation, error) {
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	inv, err := domain.NewInvitation(org.ID, inviterID, email)
	if err != nil {
		return nil, err
	}

	if err := s.invStore.Create(ctx, inv); err != nil {
		return nil, err
	}

	claim, err := s.jwt.GenerateInvitation(ctx, inv, domain.OrgRoleMember)
	if err != nil {
		s.deleteOrphan(ctx, inv)
		return nil, fmt.Errorf("failed to sign invitation claim: %w", err)
	}

	msg := mail.InvitationMessage{
		To:               email,
		OrganizationName: org.Name,
		Claim:            claim,
	}
	if err := s.mailer.SendInvitation(ctx, msg); err != nil {
		s.deleteOrphan(ctx, inv)
		return nil, fmt.Errorf("failed to send invitation mail: %w", err)
	}

	return inv, nil
}

// deleteOrphan removes an invitation row whose mail never went out.
func (s *InvitationService) deleteOrphan(ctx context.Context, inv *domain.Invitation) {
	if err := s.invStore.Delete(ctx, inv.ID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete undelivered invitation",
			slog.String("invitation_id", inv.ID.String()),
			slog.String("error", err.Error()))
	}
}

// ListPending returns the invitations addressed to the given email
// whose stored status is pending. Rows past their expiry are included
// with their status reading expired; nothing is written back.
func (s *InvitationService) ListPending(ctx context.Context, email string) ([]*domain.Invitation, error) {
	invitations, err := s.invStore.ListPendingByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.timeFunc()
	for _, inv := range invitations {
		inv.Status = inv.EffectiveStatus(now)
	}
	return invitations, nil
}

// Redeem accepts an invitation claim for the authenticated user. The
// whole redemption runs in one transaction; the pending→accepted flip
// is guarded so concurrent redemptions of the same claim yield exactly
// one success.
func (s *InvitationService) Redeem(ctx context.Context, signedClaim string) (*RedeemResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.jwt.ValidateInvitation(ctx, signedClaim)
	if err != nil {
		log.Debug("invitation claim rejected", slog.String("error", err.Error()))
		// %v keeps the auth sentinel out of the chain so the claim
		// failure maps as a bad invitation, not a bad session.
		return nil, fmt.Errorf("%w: %v", ErrInvalidInvitation, err)
	}

	var result *RedeemResult
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		invitations := s.invStore.WithTx(tx)
		orgs := s.orgStore.WithTx(tx)
		users := s.userStore.WithTx(tx)

		inv, err := invitations.GetByToken(ctx, claims.Token)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrInvalidInvitation
			}
			return err
		}

		// The row is the source of truth: the claim must match it and
		// it must still be redeemable.
		if inv.Email != claims.Email || inv.OrganizationID != claims.OrganizationID {
			return ErrInvalidInvitation
		}
		if inv.EffectiveStatus(s.timeFunc()) != domain.InvitationPending {
			return ErrInvalidInvitation
		}

		stillAdmin, err := orgs.HasAdmin(ctx, inv.InviterID, inv.OrganizationID)
		if err != nil {
			return err
		}
		if !stillAdmin {
			return ErrInviterNotAdmin
		}

		user, err := users.GetByEmail(ctx, inv.Email)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrUnregisteredEmail
			}
			return err
		}

		if _, err := orgs.GetMembership(ctx, user.ID, inv.OrganizationID); err == nil {
			return ErrAlreadyMember
		} else if !store.IsNotFoundError(err) {
			return err
		}

		// Flip first: the guarded pending-only update is the
		// serialization point, so the losing side of a race reads as a
		// spent invitation rather than a membership conflict.
		if err := invitations.MarkAccepted(ctx, inv.ID); err != nil {
			if errors.Is(err, store.ErrInvitationNotPending) {
				return ErrInvalidInvitation
			}
			return err
		}

		membership, err := domain.NewMembership(user.ID, inv.OrganizationID, claims.Role)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := orgs.AddMember(ctx, membership); err != nil {
			if errors.Is(err, store.ErrMemberExists) {
				return ErrAlreadyMember
			}
			return err
		}

		if err := users.MarkSetupComplete(ctx, user.ID, domain.RoleUser); err != nil {
			return err
		}

		user.Role = domain.RoleUser
		user.SetupComplete = true
		result = &RedeemResult{
			User:           user,
			OrganizationID: inv.OrganizationID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateSession(ctx, result.User)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	result.Token = token

	log.Info("invitation redeemed",
		slog.String("user_id", result.User.ID.String()),
		slog.String("organization_id", result.OrganizationID.String()))
	return result, nil
}
