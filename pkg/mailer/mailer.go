// Package mailer sends transactional email over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Dialer sends fully built messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer builds and sends messages from a fixed sender address.
type Mailer struct {
	dialer Dialer
	from   string
}

// New returns a Mailer backed by an SMTP dialer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host must be set")
	}
	if cfg.From == "" {
		return nil, errors.New("sender address must be set")
	}
	return NewWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From), nil
}

func NewWithDialer(d Dialer, from string) *Mailer {
	return &Mailer{dialer: d, from: from}
}

// SendEmail sends an HTML email to a single recipient.
func (m *Mailer) SendEmail(recipient, subject, htmlBody string) error {
	if recipient == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if subject == "" {
		return errors.New("email subject cannot be empty")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var waitlistWelcome = template.Must(template.New("waitlist").Parse(`<html>
  <body>
    <h1>You're on the LaunchKit waitlist</h1>
    <p>Thanks for signing up{{if .VentureName}} with <strong>{{.VentureName}}</strong>{{end}}.</p>
    <p>We'll email you as soon as your spot opens up. In the meantime, reply to this email and
    tell us about the customers you're trying to reach.</p>
  </body>
</html>`))

// SendWaitlistWelcome sends the confirmation mail for a new waitlist signup.
func (m *Mailer) SendWaitlistWelcome(recipient, ventureName string) error {
	var body bytes.Buffer
	if err := waitlistWelcome.Execute(&body, struct{ VentureName string }{ventureName}); err != nil {
		return fmt.Errorf("failed to render waitlist email: %w", err)
	}
	return m.SendEmail(recipient, "You're on the LaunchKit waitlist", body.String())
}
