// Package mailer sends transactional email about new leads through Resend.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/resendlabs/resend-go"
)

// ErrNotConfigured is returned when no API key or recipient is set.
var ErrNotConfigured = errors.New("mailer: not configured")

// LeadNotice is the subset of a contact that goes into the notification email.
type LeadNotice struct {
	ID          int64
	Name        string
	Email       string
	Phone       string
	CountryCode string
	Company     string
	Subject     string
	Message     string
	AdminURL    string
}

// Notifier sends lead notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead LeadNotice) error
}

// ResendNotifier is the Resend-backed Notifier.
type ResendNotifier struct {
	from string
	to   []string
	send func(*resend.SendEmailRequest) error
}

// NewResendNotifier creates a notifier. It returns ErrNotConfigured when apiKey
// or to is empty so callers can fall back to NopNotifier.
func NewResendNotifier(apiKey, from, to string) (*ResendNotifier, error) {
	if apiKey == "" || to == "" {
		return nil, ErrNotConfigured
	}
	client := resend.NewClient(apiKey)
	return &ResendNotifier{
		from: from,
		to:   []string{to},
		send: func(p *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(p)
			return err
		},
	}, nil
}

var leadTemplate = template.Must(template.New("lead").Parse(`<h2>New website enquiry #{{.ID}}</h2>
<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt;{{if .Company}} from {{.Company}}{{end}}</p>
<p>Phone: {{.CountryCode}} {{.Phone}}</p>
<p>Subject: {{.Subject}}</p>
<blockquote style="white-space:pre-wrap">{{.Message}}</blockquote>
{{if .AdminURL}}<p><a href="{{.AdminURL}}">Open in the contact panel</a></p>{{end}}
`))

// RenderLead renders the HTML body of a lead notification. User input is escaped.
func RenderLead(lead LeadNotice) (string, error) {
	var buf bytes.Buffer
	if err := leadTemplate.Execute(&buf, lead); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NotifyNewLead emails the site owner about a new contact.
func (n *ResendNotifier) NotifyNewLead(ctx context.Context, lead LeadNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html, err := RenderLead(lead)
	if err != nil {
		return fmt.Errorf("render lead email: %w", err)
	}
	err = n.send(&resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: fmt.Sprintf("New enquiry: %s", lead.Subject),
		Html:    html,
		ReplyTo: lead.Email,
	})
	if err != nil {
		return fmt.Errorf("failed to send lead email via Resend: %w", err)
	}
	return nil
}

// NopNotifier drops notifications. Used when Resend is not configured.
type NopNotifier struct{}

// NotifyNewLead does nothing.
func (NopNotifier) NotifyNewLead(context.Context, LeadNotice) error { return nil }
