// Package notify delivers password-reset requests to an external channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"caretalk/internal/domain"
)

// Mailer sends reset requests over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer returns a Mailer for the given SMTP endpoint.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

// SendPasswordReset emails a reset prompt to the address. The message is
// deliberately identical whether or not an account exists.
func (m *Mailer) SendPasswordReset(ctx context.Context, email string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password Reset Request")
	msg.SetBody("text/plain",
		"A password reset was requested for this address. If this was you, follow the link in the app to choose a new password. Otherwise ignore this message.")

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// LogNotifier records reset requests in the log instead of sending them.
// Default for local runs without an SMTP endpoint.
type LogNotifier struct {
	Log *slog.Logger
}

// SendPasswordReset logs the request.
func (n LogNotifier) SendPasswordReset(ctx context.Context, email string) error {
	n.Log.Info("password reset requested", "email", email)
	return nil
}

var (
	_ domain.Notifier = (*Mailer)(nil)
	_ domain.Notifier = LogNotifier{}
)
