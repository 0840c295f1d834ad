package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfixhq/mindfix/internal/billing"
	"github.com/mindfixhq/mindfix/internal/plan"
	"github.com/mindfixhq/mindfix/internal/user"
)

type fakeProvider struct {
	customersCreated atomic.Int64
	sessionsCreated  atomic.Int64
	customerErr      error
	sessionErr       error
	lastRequest      billing.CheckoutRequest
}

func (f *fakeProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	if f.customerErr != nil {
		return "", f.customerErr
	}
	n := f.customersCreated.Add(1)
	return fmt.Sprintf("cus_%s_%d", email, n), nil
}

func (f *fakeProvider) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessionsCreated.Add(1)
	f.lastRequest = req
	return &billing.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.example.com/cs_test_123",
	}, nil
}

const testPriceID = "price_1SUWcJBgKzDsfhDgz36JYTQW"

func newService(t *testing.T, provider billing.Provider, store user.Store, opts ...billing.Option) *billing.Service {
	t.Helper()
	return billing.NewService(provider, store, billing.Config{SiteURL: "https://mindfix.app"}, opts...)
}

func TestService_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("missing priceId rejected with no side effects", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		store := user.NewMemoryStore()

		_, err := newService(t, provider, store).CreateCheckoutSession(context.Background(), "", "a@b.c")

		require.ErrorIs(t, err, billing.ErrMissingPriceID)
		assert.True(t, billing.IsValidationError(err))
		assert.Zero(t, provider.customersCreated.Load())
		assert.Zero(t, provider.sessionsCreated.Load())
		_, getErr := store.GetByEmail(context.Background(), "a@b.c")
		assert.ErrorIs(t, getErr, user.ErrUserNotFound)
	})

	t.Run("missing email rejected with no side effects", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}

		_, err := newService(t, provider, user.NewMemoryStore()).CreateCheckoutSession(context.Background(), testPriceID, "")

		require.ErrorIs(t, err, billing.ErrMissingEmail)
		assert.Zero(t, provider.customersCreated.Load())
	})

	t.Run("invalid site URL is a config error, nothing called", func(t *testing.T) {
		t.Parallel()
		for _, siteURL := range []string{"", "mindfix.app", "ftp://mindfix.app", "https://"} {
			provider := &fakeProvider{}
			svc := billing.NewService(provider, user.NewMemoryStore(), billing.Config{SiteURL: siteURL})

			_, err := svc.CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")

			require.ErrorIs(t, err, billing.ErrInvalidSiteURL, "siteURL %q", siteURL)
			assert.False(t, billing.IsValidationError(err))
			assert.Zero(t, provider.customersCreated.Load())
		}
	})

	t.Run("unknown price rejected when catalog is attached", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		svc := newService(t, provider, user.NewMemoryStore(), billing.WithCatalog(plan.Default()))

		_, err := svc.CreateCheckoutSession(context.Background(), "price_unknown", "a@b.c")

		require.ErrorIs(t, err, billing.ErrUnknownPriceID)
		assert.Zero(t, provider.customersCreated.Load())
	})

	t.Run("first checkout creates and persists exactly one customer", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		store := user.NewMemoryStore()

		url, err := newService(t, provider, store).CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example.com/cs_test_123", url)
		assert.Equal(t, int64(1), provider.customersCreated.Load())

		u, err := store.GetByEmail(context.Background(), "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "cus_a@b.c_1", u.BillingCustomerID)
	})

	t.Run("second checkout reuses the persisted customer id", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		store := user.NewMemoryStore()
		svc := newService(t, provider, store)

		_, err := svc.CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")
		require.NoError(t, err)
		_, err = svc.CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")
		require.NoError(t, err)

		assert.Equal(t, int64(1), provider.customersCreated.Load())
		assert.Equal(t, int64(2), provider.sessionsCreated.Load())
		assert.Equal(t, "cus_a@b.c_1", provider.lastRequest.CustomerID)
	})

	t.Run("losing the persist race adopts the stored id", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}
		store := user.NewMemoryStore()
		// Another writer got there first; a later conditional write must
		// report the winner's id instead of overwriting it.
		_, err := store.LinkBillingCustomer(context.Background(), "a@b.c", "cus_winner")
		require.NoError(t, err)
		stored, err := store.LinkBillingCustomer(context.Background(), "a@b.c", "cus_loser")
		require.NoError(t, err)
		assert.Equal(t, "cus_winner", stored)

		_, err = newService(t, provider, store).CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")
		require.NoError(t, err)
		assert.Zero(t, provider.customersCreated.Load())
		assert.Equal(t, "cus_winner", provider.lastRequest.CustomerID)
	})

	t.Run("session redirect targets derive from the site URL", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{}

		_, err := newService(t, provider, user.NewMemoryStore()).CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")

		require.NoError(t, err)
		assert.Equal(t, "https://mindfix.app/dashboard?success=true", provider.lastRequest.SuccessURL)
		assert.Equal(t, "https://mindfix.app/subscription?canceled=true", provider.lastRequest.CancelURL)
		assert.Equal(t, testPriceID, provider.lastRequest.PriceID)
	})

	t.Run("provider customer failure surfaces", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{customerErr: errors.New("stripe is down")}

		_, err := newService(t, provider, user.NewMemoryStore()).CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe is down")
		assert.False(t, billing.IsValidationError(err))
	})

	t.Run("provider session failure surfaces after customer persisted", func(t *testing.T) {
		t.Parallel()
		provider := &fakeProvider{sessionErr: errors.New("rate limited")}
		store := user.NewMemoryStore()

		_, err := newService(t, provider, store).CreateCheckoutSession(context.Background(), testPriceID, "a@b.c")

		require.Error(t, err)
		// The customer id survives for the retry even though the session failed.
		u, getErr := store.GetByEmail(context.Background(), "a@b.c")
		require.NoError(t, getErr)
		assert.NotEmpty(t, u.BillingCustomerID)
	})
}
