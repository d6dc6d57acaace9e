package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Send(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.mailtrap.io", Port: 2525, Username: "u", Password: "p", From: "bot@plantation.dev"})
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err = m.Send(context.Background(), Message{To: "worker@example.com", Subject: "Reset", Body: "<p>link</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.mailtrap.io:2525", gotAddr)
	assert.Equal(t, "bot@plantation.dev", gotFrom)
	assert.Equal(t, []string{"worker@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, string(gotMsg), "Subject: Reset\r\n")
}

func TestSMTPMailer_Errors(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Username: "u", Password: "p", From: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, 587, m.cfg.Port)

	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	err = m.Send(context.Background(), Message{To: "w@example.com", Subject: "x", Body: "plain"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestBuildMessage_PlainText(t *testing.T) {
	msg := string(buildMessage("a@b.c", Message{To: "w@example.com", Subject: "Hi", Body: "hello"}))
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, msg, "\r\n\r\nhello\r\n")
}

func TestNewSendGridMessage(t *testing.T) {
	m := newSendGridMessage("Plantation Drive", "bot@plantation.dev", Message{To: "w@example.com", Subject: "Reset", Body: "go here"})
	assert.Equal(t, "Reset", m.Subject)
	assert.Equal(t, "bot@plantation.dev", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "w@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
