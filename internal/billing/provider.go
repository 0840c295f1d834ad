package billing

import (
	"context"
)

// Provider is the narrow payment-provider surface the checkout flow needs:
// lazily create a customer and open a hosted checkout. Keeping it this small
// leaves room for providers other than Stripe.
type Provider interface {
	// CreateCustomer registers a new provider customer for the email and
	// returns its id.
	CreateCustomer(ctx context.Context, email string) (string, error)

	// CreateCheckoutSession opens a hosted, subscription-mode checkout and
	// returns the URL the browser should navigate to.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// CheckoutRequest is the input for one hosted checkout.
type CheckoutRequest struct {
	CustomerID string // provider customer id (cus_xxx)
	PriceID    string // provider price id for the chosen plan
	SuccessURL string // redirect after successful payment
	CancelURL  string // redirect when the customer backs out
}

// CheckoutSession is a created hosted checkout.
type CheckoutSession struct {
	ID  string
	URL string
}
