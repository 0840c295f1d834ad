package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrz1836/postmark"
)

var ErrFailedToSendEmail = errors.New("failed to send email")

// Mailer delivers the password reset email. The dev sender logs instead of
// sending so the flow works without a Postmark account.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

type MailerConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`                       // PostmarkServerToken authorizes sends; empty switches to the dev sender.
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`                      // PostmarkAccountToken is required by the Postmark client.
	SenderEmail          string `env:"EMAIL_SENDER" envDefault:"no-reply@mindfix.app"` // SenderEmail is the From address.
}

// Configured reports whether Postmark credentials were provided.
func (c MailerConfig) Configured() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}

type postmarkMailer struct {
	client *postmark.Client
	from   string
}

func NewPostmarkMailer(cfg MailerConfig) (Mailer, error) {
	if !cfg.Configured() {
		return nil, errors.New("postmark tokens are required")
	}
	return &postmarkMailer{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   cfg.SenderEmail,
	}, nil
}

func (m *postmarkMailer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	resp, err := m.client.SendEmail(ctx, postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  "Reset your MindFix password",
		Tag:      "password-reset",
		HTMLBody: fmt.Sprintf(`<p>Someone requested a password reset for this address.</p><p><a href="%s">Choose a new password</a></p><p>If this wasn't you, ignore this email.</p>`, resetURL),
		TextBody: fmt.Sprintf("Someone requested a password reset for this address.\n\nChoose a new password: %s\n\nIf this wasn't you, ignore this email.\n", resetURL),
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

// DevMailer logs reset links instead of emailing them.
type DevMailer struct {
	Log *slog.Logger
}

func (m DevMailer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	m.Log.InfoContext(ctx, "password reset requested", "email", toEmail, "reset_url", resetURL)
	return nil
}
