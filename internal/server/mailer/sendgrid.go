package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridMailer отправляет письма через SendGrid Web API
type SendGridMailer struct {
	apiKey string
	from   string
	host   string
}

// NewSendGridMailer создает SendGridMailer.
// Пустой host означает https://api.sendgrid.com.
func NewSendGridMailer(apiKey, from, host string) *SendGridMailer {
	return &SendGridMailer{
		apiKey: apiKey,
		from:   from,
		host:   host,
	}
}

// SendPasswordReset отправляет письмо с токеном сброса
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("GlobalConnect", m.from),
		resetSubject,
		mail.NewEmail("", to),
		resetText(token),
		resetHTML(token),
	)

	request := sendgrid.GetRequest(m.apiKey, sendGridEndpoint, m.host)
	request.Method = http.MethodPost
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", response.StatusCode, response.Body)
	}

	return nil
}
