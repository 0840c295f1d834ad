package billing

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeConfig holds credentials for the Stripe provider.
type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET_KEY,required"` // SecretKey is the server-side API key, never exposed to clients.
}

// StripeProvider implements Provider on the official Stripe SDK.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{api: api}, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return customer.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if req.CustomerID == "" {
		return nil, errors.New("customer id is required")
	}
	if req.PriceID == "" {
		return nil, errors.New("price id is required")
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(req.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	if sess.URL == "" {
		return nil, errors.New("no checkout URL returned from stripe")
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

var _ Provider = (*StripeProvider)(nil)
