// Package mailer implements the outbound email notifier. Delivery is
// best-effort: callers log failures and move on, they never retry within the
// same cycle.
package mailer

import (
	"context"

	"github.com/wneessen/go-mail"
)

// Email is one outbound message. FromName is optional; when set it becomes
// the sender display name on the configured from-address.
type Email struct {
	To       string
	FromName string
	Subject  string
	Text     string
	HTML     string
}

// Notifier sends a single email. Implementations must respect ctx deadlines.
type Notifier interface {
	Send(ctx context.Context, email *Email) error
}

// SMTPNotifier delivers mail over authenticated SMTP (e.g. smtp.sendgrid.net).
type SMTPNotifier struct {
	client *mail.Client
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) (*SMTPNotifier, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, err
	}

	return &SMTPNotifier{client: client, from: from}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, email *Email) error {
	msg := mail.NewMsg()

	if email.FromName != "" {
		if err := msg.FromFormat(email.FromName, n.from); err != nil {
			return err
		}
	} else {
		if err := msg.From(n.from); err != nil {
			return err
		}
	}

	if err := msg.To(email.To); err != nil {
		return err
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	}

	return n.client.DialAndSendWithContext(ctx, msg)
}
