// Package mailer доставляет пользователям письма со сбросом пароля.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

const resetSubject = "GlobalConnect password reset"

// Mailer отправляет токен сброса пароля пользователю
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Config выбирает транспорт: SendGrid при наличии API ключа, иначе SMTP
// при заданном хосте, иначе письма только логируются.
type Config struct {
	From           string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string
}

// New создает Mailer по конфигурации
func New(cfg Config, logger *slog.Logger) Mailer {
	switch {
	case cfg.SendGridAPIKey != "":
		logger.Info("password reset mail via SendGrid")
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.From, "")
	case cfg.SMTPHost != "":
		logger.Info("password reset mail via SMTP", "host", cfg.SMTPHost)
		return NewSMTPMailer(cfg)
	default:
		logger.Warn("no mail transport configured, reset tokens are only logged")
		return NewLogMailer(logger)
	}
}

func resetText(token string) string {
	return fmt.Sprintf("Use this token to reset your GlobalConnect password:\n\n%s\n\n"+
		"The token expires in one hour. If you did not request a reset, ignore this email.\n", token)
}

func resetHTML(token string) string {
	return fmt.Sprintf("<p>Use this token to reset your GlobalConnect password:</p>"+
		"<p><strong>%s</strong></p>"+
		"<p>The token expires in one hour. If you did not request a reset, ignore this email.</p>", token)
}

// LogMailer пишет токен в лог вместо отправки. Только для разработки.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer создает LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendPasswordReset логирует токен сброса
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	m.logger.InfoContext(ctx, "password reset token generated", "to", to, "token", token)
	return nil
}
