package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer delivers activation messages over SMTP.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer constructs an SMTP-backed Mailer. The from address is used
// as the envelope and header sender of every activation message.
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	client, err := gomail.NewClient(host,
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(username),
		gomail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client init: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

// SendActivation mails the activation link to the given address.
func (m *SMTPMailer) SendActivation(ctx context.Context, to string, activationURL string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Activate your account")
	msg.SetBodyString(gomail.TypeTextHTML, activationBody(activationURL))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("activation mail send: %w", err)
	}
	return nil
}

func activationBody(activationURL string) string {
	return fmt.Sprintf(`<div>
	<h1>Confirm your email address</h1>
	<p>Follow the link below to activate your account:</p>
	<a href=%q>%s</a>
</div>`, activationURL, activationURL)
}
