package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// SMTPMailer отправляет письма через SMTP сервер
type SMTPMailer struct {
	send     func(e *email.Email, addr string, auth smtp.Auth) error
	from     string
	host     string
	port     string
	username string
	password string
}

// NewSMTPMailer создает SMTPMailer
func NewSMTPMailer(cfg Config) *SMTPMailer {
	port := cfg.SMTPPort
	if port == "" {
		port = "587"
	}

	return &SMTPMailer{
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
		from:     cfg.From,
		host:     cfg.SMTPHost,
		port:     port,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

// SendPasswordReset отправляет письмо с токеном сброса
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := m.compose(to, token)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := m.send(e, net.JoinHostPort(m.host, m.port), auth); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (m *SMTPMailer) compose(to, token string) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = resetSubject
	e.Text = []byte(resetText(token))
	e.HTML = []byte(resetHTML(token))
	return e
}
