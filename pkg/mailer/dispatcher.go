package mailer

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/metrics"
)

// Kind names a mail template.
type Kind string

const (
	KindQuoteNotification Kind = "quote-notification"
	KindQuoteAutoreply    Kind = "quote-autoreply"
	KindPasswordReset     Kind = "password-reset"
)

const defaultTimeout = 15 * time.Second

// QuoteRequest is a visitor's contact form submission.
type QuoteRequest struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Service string
	Message string
}

// PasswordReset addresses a reset link to an admin.
type PasswordReset struct {
	Email     string
	Name      string
	Token     string
	ExpiresIn time.Duration
}

type DispatcherConfig struct {
	From        string
	Recipient   string // inbox for quote notifications
	Brand       string
	FrontendURL string
	Timeout     time.Duration
}

// Dispatcher renders templates and delivers them through a Sender.
type Dispatcher struct {
	sender Sender
	cfg    DispatcherConfig
	log    logger.Logger
}

func NewDispatcher(sender Sender, cfg DispatcherConfig, log logger.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Brand == "" {
		cfg.Brand = "Tirzah"
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Dispatcher{sender: sender, cfg: cfg, log: log.WithComponent("mailer")}
}

// Send renders kind with data (QuoteRequest or PasswordReset) and delivers
// it. Delivery failures wrap ErrDelivery.
func (d *Dispatcher) Send(ctx context.Context, kind Kind, data any) error {
	msg, err := d.compose(kind, data)
	if err != nil {
		metrics.MailSentTotal.WithLabelValues(string(kind), metrics.ResultError).Inc()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Send(ctx, msg); err != nil {
		metrics.MailSentTotal.WithLabelValues(string(kind), metrics.ResultError).Inc()
		d.log.WithContext(ctx).Error("Mail delivery failed", err,
			logger.MailKind(string(kind)),
			logger.Provider(d.sender.Provider()),
			logger.Duration("duration", time.Since(start)),
		)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	metrics.MailSentTotal.WithLabelValues(string(kind), metrics.ResultOK).Inc()
	d.log.WithContext(ctx).Info("Mail sent",
		logger.MailKind(string(kind)),
		logger.Provider(d.sender.Provider()),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// NotifyQuote forwards a quote request to the studio inbox with the
// visitor as reply-to.
func (d *Dispatcher) NotifyQuote(ctx context.Context, q QuoteRequest) error {
	return d.Send(ctx, KindQuoteNotification, q)
}

// AcknowledgeQuote sends the visitor a copy of what they submitted.
func (d *Dispatcher) AcknowledgeQuote(ctx context.Context, q QuoteRequest) error {
	return d.Send(ctx, KindQuoteAutoreply, q)
}

func (d *Dispatcher) SendPasswordReset(ctx context.Context, r PasswordReset) error {
	return d.Send(ctx, KindPasswordReset, r)
}

// ResetLink is the frontend page that consumes a reset token.
func (d *Dispatcher) ResetLink(token string) string {
	return d.cfg.FrontendURL + "/admin/reset-password?token=" + url.QueryEscape(token)
}

func (d *Dispatcher) compose(kind Kind, data any) (Message, error) {
	v := view{Brand: d.cfg.Brand}
	msg := Message{From: d.cfg.From}

	var tmpl *template.Template
	switch kind {
	case KindQuoteNotification:
		q, ok := data.(QuoteRequest)
		if !ok {
			return Message{}, fmt.Errorf("mail %s: unexpected data %T", kind, data)
		}
		v.Quote = q
		msg.To = d.cfg.Recipient
		msg.ReplyTo = q.Email
		msg.Subject = "New Quote Request from " + q.Name
		tmpl = quoteNotificationTmpl
	case KindQuoteAutoreply:
		q, ok := data.(QuoteRequest)
		if !ok {
			return Message{}, fmt.Errorf("mail %s: unexpected data %T", kind, data)
		}
		v.Quote = q
		msg.To = q.Email
		msg.Subject = "Thank you for your quote request - " + d.cfg.Brand
		tmpl = quoteAutoreplyTmpl
	case KindPasswordReset:
		r, ok := data.(PasswordReset)
		if !ok {
			return Message{}, fmt.Errorf("mail %s: unexpected data %T", kind, data)
		}
		v.Reset = r
		v.Link = d.ResetLink(r.Token)
		v.ExpiresIn = humanDuration(r.ExpiresIn)
		msg.To = r.Email
		msg.Subject = "Password reset for your admin account"
		tmpl = passwordResetTmpl
	default:
		return Message{}, fmt.Errorf("unknown mail kind %q", kind)
	}

	html, err := render(tmpl, v)
	if err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}
	msg.HTML = html
	return msg, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "1 hour"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
