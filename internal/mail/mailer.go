// Package mail delivers transactional email over SMTP. The Mailer interface
// exists so services and the background worker can be tested with a fake.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through a single SMTP relay with PLAIN auth.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if m.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg))
}

// Discard drops all mail. Used when SMTP is not configured.
type Discard struct{}

func (Discard) Send(context.Context, string, string, string) error { return nil }

func Welcome(name string) (subject, body string) {
	subject = "Welcome to Second Brain"
	body = fmt.Sprintf(`Hi %s,

Your Second Brain account is ready. Start saving articles, notes, images
and documents, organize them into collections, and ask questions about
anything you have stored.

Happy capturing!
`, name)
	return subject, body
}

func PasswordReset(name, resetURL string) (subject, body string) {
	subject = "Reset your Second Brain password"
	body = fmt.Sprintf(`Hi %s,

We received a request to reset your password. The link below is valid for
10 minutes and can only be used once:

%s

If you did not request this, you can ignore this email.
`, name, resetURL)
	return subject, body
}
