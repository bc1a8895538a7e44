// Package mail dispatches transactional email. The only message the
// application sends today is the organization invitation.
package mail

import (
	"context"
	"fmt"
)

// InvitationMessage carries everything needed to render and address an
// invitation email. Claim is the signed invitation claim embedded in
// the redemption link.
type InvitationMessage struct {
	To               string
	OrganizationName string
	Claim            string
}

// Mailer sends invitation email. Implementations must respect the
// context deadline: a hung SMTP conversation must not stall the request
// that triggered it.
type Mailer interface {
	SendInvitation(ctx context.Context, msg InvitationMessage) error
}

// invitationSubject is the subject line for invitation mail.
const invitationSubject = "You're invited to join an organization"

// invitationBody renders the plain-text invitation body with the
// redemption link.
func invitationBody(baseURL string, msg InvitationMessage) string {
	link := fmt.Sprintf("%s/accept-invite?token=%s", baseURL, msg.Claim)
	return fmt.Sprintf(
		"You've been invited to join %s.\r\n\r\n"+
			"Open the link below to accept the invitation:\r\n\r\n"+
			"%s\r\n\r\n"+
			"This link expires in 72 hours. If you didn't expect this email, ignore it.\r\n",
		msg.OrganizationName,
		link,
	)
}
