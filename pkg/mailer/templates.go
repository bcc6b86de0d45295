package mailer

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// multiline strips all markup from user text and keeps its line breaks.
func multiline(s string) template.HTML {
	clean := strict.Sanitize(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>"))
}

var funcs = template.FuncMap{"multiline": multiline}

var quoteNotificationTmpl = template.Must(template.New("quote-notification").Funcs(funcs).Parse(`
<h2>New Quote Request</h2>
<p><strong>Name:</strong> {{.Quote.Name}}</p>
<p><strong>Email:</strong> {{.Quote.Email}}</p>
{{- if .Quote.Phone}}
<p><strong>Phone:</strong> {{.Quote.Phone}}</p>
{{- end}}
{{- if .Quote.Company}}
<p><strong>Company:</strong> {{.Quote.Company}}</p>
{{- end}}
<p><strong>Service:</strong> {{.Quote.Service}}</p>
<p><strong>Message:</strong></p>
<p>{{multiline .Quote.Message}}</p>
<hr>
<p><em>This message was sent from the {{.Brand}} contact form</em></p>
`))

var quoteAutoreplyTmpl = template.Must(template.New("quote-autoreply").Funcs(funcs).Parse(`
<h2>Thank you for contacting {{.Brand}}!</h2>
<p>Dear {{.Quote.Name}},</p>
<p>We have received your quote request and will get back to you as soon as possible.</p>
<p>Here's a summary of what you sent:</p>
<p><strong>Service:</strong> {{.Quote.Service}}</p>
<p><strong>Message:</strong> {{multiline .Quote.Message}}</p>
<br>
<p>Best regards,<br>The {{.Brand}} Team</p>
`))

var passwordResetTmpl = template.Must(template.New("password-reset").Parse(`
<p>Hello {{.Reset.Name}},</p>
<p>You requested a password reset. Click the link below to set a new password. This link expires in {{.ExpiresIn}}.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not request this, please ignore this email.</p>
`))

type view struct {
	Brand     string
	Quote     QuoteRequest
	Reset     PasswordReset
	Link      string
	ExpiresIn string
}

func render(tmpl *template.Template, v view) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, v); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
