package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

// Invitation states. Expired is never written by the application: it is
// derived lazily from ExpiresAt at read time. Accepted is terminal.
const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// InvitationTTL is how long an invitation stays redeemable.
const InvitationTTL = 72 * time.Hour

// invitationTokenBytes is the raw size of the random invitation token.
// 32 bytes hex-encode to 64 characters.
const invitationTokenBytes = 32

// Invitation validation errors.
var (
	ErrEmptyInvitationID    = errors.New("invitation ID cannot be empty")
	ErrEmptyInviterID       = errors.New("inviter ID cannot be empty")
	ErrEmptyInvitationToken = errors.New("invitation token cannot be empty")
	ErrInvalidInviteStatus  = errors.New("invalid invitation status")
)

// Invitation is a pending offer for an email address to join an
// organization. The token is an opaque random value embedded in the
// signed claim mailed to the recipient.
type Invitation struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	InviterID      uuid.UUID        `json:"inviter_id"`
	Email          string           `json:"email"`
	Token          string           `json:"-"`
	Status         InvitationStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// NewInvitation creates a pending invitation for the given email with a
// freshly generated token and a 72-hour expiry.
func NewInvitation(organizationID, inviterID uuid.UUID, email string) (*Invitation, error) {
	token, err := NewInvitationToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &Invitation{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		InviterID:      inviterID,
		Email:          email,
		Token:          token,
		Status:         InvitationPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(InvitationTTL),
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	return inv, nil
}

// NewInvitationToken generates a cryptographically random 32-byte token,
// hex-encoded.
func NewInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Validate checks if the Invitation has valid data.
func (i *Invitation) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInvitationID
	}
	if i.OrganizationID == uuid.Nil {
		return ErrEmptyOrganizationID
	}
	if i.InviterID == uuid.Nil {
		return ErrEmptyInviterID
	}
	if i.Email == "" {
		return ErrEmptyEmail
	}
	if !ValidEmail(i.Email) {
		return ErrInvalidEmail
	}
	if i.Token == "" {
		return ErrEmptyInvitationToken
	}
	switch i.Status {
	case InvitationPending, InvitationAccepted, InvitationExpired:
	default:
		return ErrInvalidInviteStatus
	}
	return nil
}

// IsExpired reports whether the invitation is past its expiry at the
// given instant. Expiry is observed lazily; no sweeper transitions rows.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EffectiveStatus returns the status as observed at the given instant:
// a pending invitation past its expiry reads as expired even though the
// stored row still says pending.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && i.IsExpired(now) {
		return InvitationExpired
	}
	return i.Status
}
