// Package billing implements the checkout-initiation flow: resolve or lazily
// create the provider customer for an email, then open a hosted
// subscription-mode checkout for the requested price.
package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mindfixhq/mindfix/internal/entitlement"
	"github.com/mindfixhq/mindfix/internal/plan"
	"github.com/mindfixhq/mindfix/internal/user"
)

var (
	// Validation failures, rejected before any provider or store call.
	ErrMissingPriceID = errors.New("missing priceId")
	ErrMissingEmail   = errors.New("missing email")
	ErrUnknownPriceID = errors.New("unknown priceId")

	// ErrInvalidSiteURL is a configuration failure: the public base URL must
	// be an absolute http(s) URL to build redirect targets from.
	ErrInvalidSiteURL = errors.New("invalid site URL, must include http:// or https://")
)

type Config struct {
	SiteURL string `env:"SITE_URL"` // SiteURL is the public base the success/cancel redirects derive from.
}

// Service drives checkout-session creation against the record store and the
// payment provider.
type Service struct {
	provider Provider
	store    user.Store
	catalog  *plan.Catalog
	siteURL  string
	log      *slog.Logger
}

type Option func(*Service)

// WithCatalog enables early rejection of price ids that are not on sale.
func WithCatalog(c *plan.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(provider Provider, store user.Store, cfg Config, opts ...Option) *Service {
	if provider == nil {
		panic("billing: provider is required")
	}
	if store == nil {
		panic("billing: user store is required")
	}
	s := &Service{
		provider: provider,
		store:    store,
		siteURL:  strings.TrimRight(cfg.SiteURL, "/"),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckoutSession validates input, ensures a provider customer exists
// for the email, and returns the hosted checkout URL. Invalid input is a
// no-op: nothing external is called. There is no retry and no idempotency
// key; concurrent first checkouts can create spare provider customers, but
// the conditional store write makes both callers converge on one stored id.
func (s *Service) CreateCheckoutSession(ctx context.Context, priceID, email string) (string, error) {
	if priceID == "" {
		return "", ErrMissingPriceID
	}
	if email == "" {
		return "", ErrMissingEmail
	}
	if err := validateSiteURL(s.siteURL); err != nil {
		return "", err
	}
	if s.catalog != nil {
		if _, err := s.catalog.ByPriceID(priceID); err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownPriceID, priceID)
		}
	}

	customerID, err := s.ensureCustomer(ctx, email)
	if err != nil {
		return "", err
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: s.siteURL + entitlement.RouteProtected + "?success=true",
		CancelURL:  s.siteURL + entitlement.RoutePlans + "?canceled=true",
	})
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "checkout session created",
		"email", email, "price_id", priceID, "session_id", sess.ID)
	return sess.URL, nil
}

// ensureCustomer returns the stored provider customer id for email, creating
// one at most once per stored record. A concurrent creator that loses the
// conditional write adopts the stored winner's id.
func (s *Service) ensureCustomer(ctx context.Context, email string) (string, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return "", fmt.Errorf("look up billing customer: %w", err)
	}
	if existing != nil && existing.BillingCustomerID != "" {
		return existing.BillingCustomerID, nil
	}

	created, err := s.provider.CreateCustomer(ctx, email)
	if err != nil {
		return "", err
	}

	stored, err := s.store.LinkBillingCustomer(ctx, email, created)
	if err != nil {
		return "", fmt.Errorf("persist billing customer: %w", err)
	}
	if stored != created {
		s.log.WarnContext(ctx, "lost billing customer race, adopting stored id",
			"email", email, "created", created, "stored", stored)
	}
	return stored, nil
}

// IsValidationError reports whether the error is the caller's fault (a
// 400-class response) rather than a configuration or upstream failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingPriceID) ||
		errors.Is(err, ErrMissingEmail) ||
		errors.Is(err, ErrUnknownPriceID)
}

func validateSiteURL(raw string) error {
	if raw == "" {
		return ErrInvalidSiteURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidSiteURL
	}
	return nil
}
