package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/arklim/workforce-api/internal/core/port"
	"github.com/arklim/workforce-api/internal/infra/config"
	"github.com/arklim/workforce-api/internal/infra/logger"
)

// SMTPMailer delivers transactional mail through the configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
	logger *zap.Logger
}

func NewSMTPMailer(cfg config.MailSettings, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.DefaultSender,
		logger: log,
	}
}

// SendPasswordReset emails the reset link. The link embeds a signed one-time
// token, so the message body is the only place it ever appears.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password reset request")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Follow this link to choose a new password:\n%s\n\n"+
			"If you did not request a reset, you can ignore this message.\n", link))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send password reset mail: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("password reset mail sent", zap.String("to", logger.MaskEmail(to)))
	return nil
}

var _ port.Mailer = (*SMTPMailer)(nil)
