// Package auth is the local credential service: password sign-up and
// sign-in plus the reset-password loop. Entitlement is out of its hands; the
// resolver reads the user record store after a successful sign-in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// SignUpInput is the raw sign-up form. Validate rejects it before anything
// reaches the credential storage.
type SignUpInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

func (in SignUpInput) Validate() error {
	if !in.AcceptTerms {
		return ErrTermsNotAccepted
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(in.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if NormalizeEmail(in.Email) == "" {
		return ErrEmailRequired
	}
	return nil
}

// NormalizeEmail lowercases and trims the address so the same account cannot
// be registered twice with different casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordAuthenticator is the credential service surface the handlers use.
type PasswordAuthenticator interface {
	Register(ctx context.Context, in SignUpInput) (*Credential, error)
	Authenticate(ctx context.Context, email, password string) (*Credential, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) (*Credential, error)
}

type Config struct {
	TokenSecret   string        `env:"AUTH_TOKEN_SECRET,required"`            // TokenSecret signs password reset tokens.
	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`  // ResetTokenTTL bounds reset link validity.
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`      // BcryptCost is the hash work factor.
}

type passwordService struct {
	storage CredentialStorage
	mailer  Mailer
	cfg     Config
	siteURL string
	log     *slog.Logger
}

type Option func(*passwordService)

func WithLogger(log *slog.Logger) Option {
	return func(s *passwordService) { s.log = log }
}

// WithMailer sets the reset email sender; the default discards into the log.
func WithMailer(m Mailer) Option {
	return func(s *passwordService) { s.mailer = m }
}

// NewPasswordService creates the credential service. siteURL is the public
// base used to build reset links.
func NewPasswordService(storage CredentialStorage, cfg Config, siteURL string, opts ...Option) PasswordAuthenticator {
	if storage == nil {
		panic("auth: credential storage is required")
	}
	if cfg.TokenSecret == "" {
		panic("auth: token secret is required")
	}
	s := &passwordService{
		storage: storage,
		cfg:     cfg,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mailer == nil {
		s.mailer = DevMailer{Log: s.log}
	}
	return s
}

func (s *passwordService) Register(ctx context.Context, in SignUpInput) (*Credential, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &Credential{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if err := s.storage.Create(ctx, cred); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account created", "email", email)
	return cred, nil
}

func (s *passwordService) Authenticate(ctx context.Context, email, password string) (*Credential, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	cred, err := s.storage.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Same failure as a wrong password, no account enumeration.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return cred, nil
}

// ForgotPassword issues a reset token and emails the link. An unknown email
// is reported as success so the endpoint cannot be used to probe accounts.
func (s *passwordService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	if _, err := s.storage.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.log.InfoContext(ctx, "password reset requested for unknown email", "email", email)
			return nil
		}
		return err
	}

	token, _, err := signResetToken(s.cfg.TokenSecret, email, s.cfg.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}

	resetURL := s.siteURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, email, resetURL); err != nil {
		return err
	}
	return nil
}

func (s *passwordService) ResetPassword(ctx context.Context, resetToken, newPassword string) (*Credential, error) {
	if len(newPassword) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	email, err := verifyResetToken(s.cfg.TokenSecret, resetToken)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.storage.UpdatePasswordHash(ctx, email, hash); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "password reset completed", "email", email)
	return s.storage.GetByEmail(ctx, email)
}
