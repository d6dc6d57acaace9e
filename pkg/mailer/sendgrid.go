package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends mail through the SendGrid v3 API.
type SendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridMailer creates a SendGridMailer for apiKey.
func NewSendGridMailer(apiKey, from, fromName string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SendGrid API key cannot be empty")
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from, fromName: fromName}, nil
}

func (s *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(s.from); err != nil {
		return err
	}
	resp, err := s.client.SendWithContext(ctx, newSendGridMessage(s.fromName, s.from, msg))
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through SendGrid: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func newSendGridMessage(fromName, from string, msg Message) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.From = mail.NewEmail(fromName, from)
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.To = append(p.To, mail.NewEmail("", msg.To))
	message.Personalizations = append(message.Personalizations, p)

	contentType := "text/plain"
	if msg.isHTML() {
		contentType = "text/html"
	}
	message.Content = append(message.Content, mail.NewContent(contentType, msg.Body))
	return message
}
