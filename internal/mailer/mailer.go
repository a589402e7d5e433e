// Package mailer delivers account verification emails.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const verificationSubject = "Verify Your Email"

// Sender delivers a verification email carrying token to email.
type Sender interface {
	SendVerification(ctx context.Context, email, token string) error
}

// VerificationLink builds the link a user follows to verify their address.
func VerificationLink(baseURL, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return strings.TrimRight(baseURL, "/") + "/auth/verify-email?" + q.Encode()
}

var verificationTemplate = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <h2>Welcome to Shortify</h2>
  <p>Please confirm your email address to start shortening links.</p>
  <p><a href="{{.Link}}">Verify my email</a></p>
  <p>This link expires in 24 hours. If you did not sign up, you can ignore this message.</p>
</body>
</html>`))

func renderVerification(link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTemplate.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
	Timeout  time.Duration
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	client  *mail.Client
	from    string
	baseURL string
}

// NewSMTPSender creates an SMTP sender. No connection is made until the first send.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{
		client:  client,
		from:    cfg.From,
		baseURL: cfg.BaseURL,
	}, nil
}

func (s *SMTPSender) SendVerification(ctx context.Context, email, token string) error {
	body, err := renderVerification(VerificationLink(s.baseURL, email, token))
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(verificationSubject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// LogSender writes verification links to the log instead of sending mail.
// Used when SMTP is not configured.
type LogSender struct {
	logger  *slog.Logger
	baseURL string
}

func NewLogSender(logger *slog.Logger, baseURL string) *LogSender {
	return &LogSender{logger: logger, baseURL: baseURL}
}

func (s *LogSender) SendVerification(ctx context.Context, email, token string) error {
	s.logger.InfoContext(ctx, "verification email (not sent, smtp disabled)",
		slog.String("email", email),
		slog.String("link", VerificationLink(s.baseURL, email, token)),
	)
	return nil
}
