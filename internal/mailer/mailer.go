// Package mailer sends transactional e-mails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tms/internal/models"
)

const sendAttempts = 3

//go:embed templates
var templateFS embed.FS

type Mailer struct {
	logger zerolog.Logger
	dialer *mail.Dialer
	sender string
}

func New(logger zerolog.Logger, host string, port int, username, password, sender string) *Mailer {
	return &Mailer{
		logger: logger,
		dialer: mail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

func (m *Mailer) SendWelcome(ctx context.Context, user *models.User) error {
	msg, err := m.newMessage(user.Email, "welcome.tmpl", user)
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

func (m *Mailer) newMessage(to, templateFile string, data any) (*mail.Message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var subject bytes.Buffer
	err = tmpl.ExecuteTemplate(&subject, "subject", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render subject: %w", err)
	}
	var plainBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&plainBody, "plainBody", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render plain body: %w", err)
	}
	var htmlBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data)
	if err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())
	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *mail.Message) error {
	var err error
	for i := 0; i < sendAttempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			m.logger.Debug().
				Strs("to", msg.GetHeader("To")).
				Int("attempt", i+1).
				Msg("sent email")
			return nil
		}
		m.logger.Warn().
			Err(err).
			Int("attempt", i+1).
			Msg("failed to send email")
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", sendAttempts, err)
}

// Nop discards every message. It is used when no SMTP host is configured.
type Nop struct{}

func (Nop) SendWelcome(context.Context, *models.User) error { return nil }
