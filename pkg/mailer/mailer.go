// Package mailer sends transactional email, such as password reset links, through SMTP or
// SendGrid.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Message is one outgoing email. Body may be plain text or HTML.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate(sender string) error {
	if m.To == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if sender == "" {
		return fmt.Errorf("sender email address cannot be empty")
	}
	if m.Subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}
	return nil
}

// isHTML infers the content type from basic HTML tags.
func (m Message) isHTML() bool {
	body := strings.ToLower(m.Body)
	return strings.Contains(body, "<html>") || strings.Contains(body, "<p>")
}

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail with net/smtp using PLAIN auth.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host cannot be empty")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}, nil
}

// Send delivers msg. net/smtp has no context support, so ctx is only checked up front.
func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(s.cfg.From); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{msg.To}, buildMessage(s.cfg.From, msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(sender string, msg Message) []byte {
	contentType := "text/plain; charset=UTF-8"
	if msg.isHTML() {
		contentType = "text/html; charset=UTF-8"
	}
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", msg.To, sender, msg.Subject, contentType, msg.Body))
}

// LogMailer only logs messages. It is used when no provider is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (l LogMailer) Send(ctx context.Context, msg Message) error {
	if l.Logger != nil {
		l.Logger.Info("Mail delivery disabled, dropping message",
			zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}
	return nil
}
