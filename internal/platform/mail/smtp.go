package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/taskhub/taskhub-api/internal/platform/logger"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ClientURL is the frontend base URL that redemption links point at.
	ClientURL string
	// Timeout bounds the whole SMTP conversation for one message.
	Timeout time.Duration
}

// SMTPMailer sends invitation mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer creates a Mailer backed by the given SMTP relay.
func NewSMTPMailer(cfg SMTPConfig, log *slog.Logger) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: log.With(slog.String("component", "smtp_mailer")),
	}
}

var _ Mailer = (*SMTPMailer)(nil)

// SendInvitation implements Mailer. The dial and the full conversation
// share one deadline derived from the context and the configured
// timeout, whichever is sooner.
func (m *SMTPMailer) SendInvitation(ctx context.Context, msg InvitationMessage) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, time.Until(deadline))
	if err != nil {
		log.Error("failed to dial SMTP relay",
			slog.String("error", err.Error()),
			slog.String("addr", addr))
		return fmt.Errorf("failed to dial SMTP relay: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to set SMTP deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Debug("failed to close SMTP client", slog.String("error", err.Error()))
		}
	}()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP auth failed: %w", err)
			}
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("SMTP RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From,
		msg.To,
		invitationSubject,
		invitationBody(m.cfg.ClientURL, msg),
	)
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to write SMTP message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish SMTP message: %w", err)
	}

	if err := client.Quit(); err != nil {
		log.Debug("SMTP QUIT failed", slog.String("error", err.Error()))
	}

	log.Info("invitation email sent", slog.String("to", msg.To))
	return nil
}

// LogMailer is a Mailer that only logs the message. It backs local
// development where no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a Mailer that logs instead of sending.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{logger: log.With(slog.String("component", "log_mailer"))}
}

var _ Mailer = (*LogMailer)(nil)

// SendInvitation implements Mailer.
func (m *LogMailer) SendInvitation(ctx context.Context, msg InvitationMessage) error {
	logger.FromContextOrDefault(ctx, m.logger).Info("invitation email (not sent: no SMTP relay configured)",
		slog.String("to", msg.To),
		slog.String("organization", msg.OrganizationName))
	return nil
}
