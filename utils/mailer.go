package utils

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"hotel-management/config"
)

// Mailer delivers the password reset code.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

// SMTPMailer sends plain-text mail through the configured relay. Without a
// relay configured it only logs the message.
type SMTPMailer struct {
	cfg  config.SMTPConfig
	log  *zap.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.SMTPConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	if !m.cfg.Enabled() {
		m.log.Info("[MOCK EMAIL] otp", zap.String("to", MaskEmail(to)), zap.String("code", code))
		return nil
	}

	safe := func(s string) string {
		return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
	}
	to = safe(to)
	name = safe(name)

	from := fmt.Sprintf("%s <%s>", safe(m.cfg.FromName), m.cfg.Username)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString("Subject: Your password reset code\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(fmt.Sprintf("Hello %s\r\n\r\nVerification code: %s\r\n\r\nThanks,\r\n", name, code))

	if err := m.send(addr, auth, m.cfg.Username, []string{to}, []byte(sb.String())); err != nil {
		return fmt.Errorf("send otp email to %s: %w", MaskEmail(to), err)
	}

	m.log.Info("otp email sent", zap.String("to", MaskEmail(to)))
	return nil
}
