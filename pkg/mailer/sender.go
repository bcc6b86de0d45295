// Package mailer renders the site's transactional emails and hands them to
// a delivery provider (SMTP, Resend or SES).
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tirzah-studio/site-api/config"
)

// ErrDelivery marks a message the provider did not accept. The wrapped
// cause is for logs only.
var ErrDelivery = errors.New("mail delivery failed")

// Message is one rendered HTML email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Provider() string
}

// NewSender picks the provider configured by MAIL_PROVIDER.
func NewSender(ctx context.Context, cfg *config.Config) (Sender, error) {
	switch cfg.MailProvider {
	case "", "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			SSL:      cfg.SMTPSSL,
			Timeout:  cfg.MailTimeout,
		}), nil
	case "resend":
		return NewResendSender(cfg.ResendAPIKey), nil
	case "ses":
		return NewSESSender(ctx, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}
