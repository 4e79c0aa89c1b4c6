// Package mailer sends transactional email (password reset links) over SMTP.
// The defaults point at Mailtrap (smtp.mailtrap.io:2525), which is useful for development and testing.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP settings used by a Mailer.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// Mailer sends email through a single SMTP relay.
type Mailer struct {
	cfg      Config
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a Mailer. Host and port fall back to Mailtrap when empty.
func New(cfg Config) *Mailer {
	if cfg.Host == "" {
		cfg.Host = "smtp.mailtrap.io"
	}
	if cfg.Port == "" {
		cfg.Port = "2525"
	}
	return &Mailer{cfg: cfg, sendMail: smtp.SendMail}
}

// SendEmail sends one message to recipient.
//
// The Content-Type is inferred from the body: bodies containing <html> or <p> are sent as text/html,
// everything else as text/plain.
//
// Returns an error if recipient, sender or subject are empty, if SMTP credentials are missing,
// or if the relay rejects the message.
func (m *Mailer) SendEmail(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if m.cfg.From == "" {
		return fmt.Errorf("sender email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}
	if m.cfg.User == "" || m.cfg.Pass == "" {
		return fmt.Errorf("SMTP username and password must be provided")
	}

	message := buildMessage(recipient, m.cfg.From, subject, body)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	if err := m.sendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(recipient, sender, subject, body string) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, sender, subject, contentType, body))
}
