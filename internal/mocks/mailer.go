package mocks

import (
	"context"
	"sync"

	"github.com/taskhub/taskhub-api/internal/platform/mail"
)

// Mailer records sent invitations and can be made to fail for chosen
// recipients.
type Mailer struct {
	mu   sync.Mutex
	sent []mail.InvitationMessage

	// FailFor maps recipient addresses to the error SendInvitation
	// returns for them.
	FailFor map[string]error
}

// NewMailer creates a recording mailer.
func NewMailer() *Mailer {
	return &Mailer{FailFor: make(map[string]error)}
}

var _ mail.Mailer = (*Mailer)(nil)

func (m *Mailer) SendInvitation(ctx context.Context, msg mail.InvitationMessage) error {
	if err, ok := m.FailFor[msg.To]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the messages delivered so far.
func (m *Mailer) Sent() []mail.InvitationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.InvitationMessage(nil), m.sent...)
}
