package auth_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfixhq/mindfix/internal/auth"
)

type capturedMail struct {
	toEmail  string
	resetURL string
}

type capturingMailer struct {
	sent []capturedMail
}

func (m *capturingMailer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	m.sent = append(m.sent, capturedMail{toEmail: toEmail, resetURL: resetURL})
	return nil
}

func newService(t *testing.T, storage auth.CredentialStorage, opts ...auth.Option) auth.PasswordAuthenticator {
	t.Helper()
	cfg := auth.Config{
		TokenSecret:   "test-secret",
		ResetTokenTTL: time.Hour,
		BcryptCost:    4, // minimum cost keeps the tests fast
	}
	return auth.NewPasswordService(storage, cfg, "https://mindfix.app", opts...)
}

func validSignUp() auth.SignUpInput {
	return auth.SignUpInput{
		Name:            "Ana",
		Email:           "Ana@B.C",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		AcceptTerms:     true,
	}
}

func TestSignUpInput_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid input passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validSignUp().Validate())
	})

	t.Run("terms must be accepted", func(t *testing.T) {
		t.Parallel()
		in := validSignUp()
		in.AcceptTerms = false
		assert.ErrorIs(t, in.Validate(), auth.ErrTermsNotAccepted)
	})

	t.Run("mismatched confirmation rejected", func(t *testing.T) {
		t.Parallel()
		in := validSignUp()
		in.ConfirmPassword = "different"
		assert.ErrorIs(t, in.Validate(), auth.ErrPasswordMismatch)
	})

	t.Run("short password rejected", func(t *testing.T) {
		t.Parallel()
		in := validSignUp()
		in.Password = "12345"
		in.ConfirmPassword = "12345"
		assert.ErrorIs(t, in.Validate(), auth.ErrPasswordTooShort)
	})

	t.Run("blank email rejected", func(t *testing.T) {
		t.Parallel()
		in := validSignUp()
		in.Email = "   "
		assert.ErrorIs(t, in.Validate(), auth.ErrEmailRequired)
	})
}

func TestPasswordService_Register(t *testing.T) {
	t.Parallel()

	t.Run("invalid input never reaches storage", func(t *testing.T) {
		t.Parallel()
		storage := auth.NewMemoryCredentialStorage()
		svc := newService(t, storage)

		in := validSignUp()
		in.Password = "123"
		in.ConfirmPassword = "123"
		_, err := svc.Register(context.Background(), in)

		require.ErrorIs(t, err, auth.ErrPasswordTooShort)
		_, getErr := storage.GetByEmail(context.Background(), "ana@b.c")
		assert.ErrorIs(t, getErr, auth.ErrAccountNotFound)
	})

	t.Run("registers with normalized email", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())

		cred, err := svc.Register(context.Background(), validSignUp())

		require.NoError(t, err)
		assert.Equal(t, "ana@b.c", cred.Email)
		assert.Equal(t, "Ana", cred.Name)
		assert.NotContains(t, string(cred.PasswordHash), "secret123")
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())

		_, err := svc.Register(context.Background(), validSignUp())
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), validSignUp())
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})
}

func TestPasswordService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials succeed regardless of email casing", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())
		_, err := svc.Register(context.Background(), validSignUp())
		require.NoError(t, err)

		cred, err := svc.Authenticate(context.Background(), "ANA@b.c", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "ana@b.c", cred.Email)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())
		_, err := svc.Register(context.Background(), validSignUp())
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), "ana@b.c", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown account fails the same way as a wrong password", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())

		_, err := svc.Authenticate(context.Background(), "nobody@b.c", "whatever")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestPasswordService_PasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("full reset loop", func(t *testing.T) {
		t.Parallel()
		mailer := &capturingMailer{}
		svc := newService(t, auth.NewMemoryCredentialStorage(), auth.WithMailer(mailer))
		_, err := svc.Register(context.Background(), validSignUp())
		require.NoError(t, err)

		require.NoError(t, svc.ForgotPassword(context.Background(), "ana@b.c"))
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "ana@b.c", mailer.sent[0].toEmail)
		assert.Contains(t, mailer.sent[0].resetURL, "https://mindfix.app/reset-password?token=")

		token := extractToken(t, mailer.sent[0].resetURL)
		_, err = svc.ResetPassword(context.Background(), token, "newsecret")
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), "ana@b.c", "secret123")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = svc.Authenticate(context.Background(), "ana@b.c", "newsecret")
		assert.NoError(t, err)
	})

	t.Run("unknown email reports success without sending", func(t *testing.T) {
		t.Parallel()
		mailer := &capturingMailer{}
		svc := newService(t, auth.NewMemoryCredentialStorage(), auth.WithMailer(mailer))

		require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@b.c"))
		assert.Empty(t, mailer.sent)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())

		_, err := svc.ResetPassword(context.Background(), "not.a-token", "newsecret")
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	})

	t.Run("short replacement password rejected before token check", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, auth.NewMemoryCredentialStorage())

		_, err := svc.ResetPassword(context.Background(), "whatever", "123")
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	})
}

func extractToken(t *testing.T, resetURL string) string {
	t.Helper()
	u, err := url.Parse(resetURL)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token, "reset URL has no token parameter")
	return token
}
