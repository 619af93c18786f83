package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends HTML e-mail over SMTP
type Mailer struct {
	config EmailConfig
	dialer *gomail.Dialer
}

// NewMailer creates a Mailer. A Mailer without a host only logs messages.
func NewMailer(config EmailConfig) *Mailer {
	if config.Port == 0 {
		config.Port = 587
	}
	m := &Mailer{config: config}
	if config.Host != "" {
		m.dialer = gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	}
	return m
}

// SendEmail sends an HTML email
func (m *Mailer) SendEmail(to, subject, body string) error {
	if m.dialer == nil {
		LogInfo("SMTP not configured, skipping email to %s: %s", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
