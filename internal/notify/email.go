package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP settings for the email transport.
type EmailConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier delivers alerts over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg    EmailConfig
	logger *zap.Logger
}

// NewEmail creates an SMTP notifier.
func NewEmail(cfg EmailConfig, logger *zap.Logger) (*EmailNotifier, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("smtp server is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{cfg: cfg, logger: logger}, nil
}

// Send delivers the message as a plain-text email. The dial/send timeout
// bounds the whole exchange.
func (n *EmailNotifier) Send(_ context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	dialer := gomail.NewDialer(n.cfg.Server, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	dialer.Timeout = 30 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		n.logger.Error("email send failed",
			zap.String("to", msg.Recipient),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}
	n.logger.Info("email sent",
		zap.String("to", msg.Recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}
