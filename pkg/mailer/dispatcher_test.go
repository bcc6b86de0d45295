package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tirzah-studio/site-api/pkg/logger"
)

type fakeSender struct {
	sent        []Message
	err         error
	hadDeadline bool
}

func (f *fakeSender) Provider() string { return "fake" }

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestDispatcher(sender Sender) *Dispatcher {
	return NewDispatcher(sender, DispatcherConfig{
		From:        "studio@example.com",
		Recipient:   "inbox@example.com",
		Brand:       "Tirzah",
		FrontendURL: "https://site.test/",
	}, logger.Nop())
}

var quote = QuoteRequest{
	Name:    "Ada <b>Lovelace</b>",
	Email:   "ada@example.com",
	Company: "Engines & Co",
	Service: "Branding",
	Message: "Hello<script>alert(1)</script>\nsecond line",
}

func TestNotifyQuote(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender)

	require.NoError(t, d.NotifyQuote(context.Background(), quote))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "studio@example.com", msg.From)
	assert.Equal(t, "inbox@example.com", msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "New Quote Request from Ada <b>Lovelace</b>", msg.Subject)

	assert.Contains(t, msg.HTML, "Ada &lt;b&gt;Lovelace&lt;/b&gt;")
	assert.Contains(t, msg.HTML, "Engines &amp; Co")
	assert.Contains(t, msg.HTML, "Hello<br>second line")
	assert.NotContains(t, msg.HTML, "<script")
	assert.NotContains(t, msg.HTML, "Phone:")
	assert.True(t, sender.hadDeadline)
}

func TestAcknowledgeQuote(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender)

	require.NoError(t, d.AcknowledgeQuote(context.Background(), quote))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Empty(t, msg.ReplyTo)
	assert.Equal(t, "Thank you for your quote request - Tirzah", msg.Subject)
	assert.Contains(t, msg.HTML, "Thank you for contacting Tirzah!")
}

func TestSendPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender)

	err := d.SendPasswordReset(context.Background(), PasswordReset{
		Email:     "admin@example.com",
		Name:      "Admin",
		Token:     "abc.def-ghi",
		ExpiresIn: 30 * time.Minute,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "admin@example.com", msg.To)
	assert.Contains(t, msg.HTML, `href="https://site.test/admin/reset-password?token=abc.def-ghi"`)
	assert.Contains(t, msg.HTML, "expires in 30 minutes")
}

func TestSendWrapsDeliveryErrors(t *testing.T) {
	cause := errors.New("connection refused")
	d := newTestDispatcher(&fakeSender{err: cause})

	err := d.NotifyQuote(context.Background(), quote)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.ErrorIs(t, err, cause)
}

func TestSendRejectsMismatchedData(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender)

	assert.Error(t, d.Send(context.Background(), KindPasswordReset, quote))
	assert.Error(t, d.Send(context.Background(), Kind("newsletter"), quote))
	assert.Empty(t, sender.sent)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
	assert.Equal(t, "5 minutes", humanDuration(5*time.Minute))
	assert.Equal(t, "1 minute", humanDuration(time.Minute))
}
