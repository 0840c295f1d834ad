package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfixhq/mindfix/internal/user"
)

func ptr[T any](v T) *T { return &v }

func TestMemoryStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("round trip returns submitted fields plus email", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()
		expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

		_, err := store.Upsert(context.Background(), "a@b.c", user.Updates{
			Name:            ptr("Ana"),
			AccessExpiresAt: ptr(expires),
			PaymentVerified: ptr(true),
		})
		require.NoError(t, err)

		got, err := store.GetByEmail(context.Background(), "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", got.Email)
		assert.Equal(t, "Ana", got.Name)
		assert.Equal(t, expires, *got.AccessExpiresAt)
		assert.True(t, got.PaymentVerified)
		// Untouched fields keep their defaults.
		assert.False(t, got.IsLifetime)
		assert.Equal(t, user.StatusNone, got.SubscriptionStatus)
		assert.Empty(t, got.BillingCustomerID)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()

		_, err := store.Upsert(context.Background(), "a@b.c", user.Updates{
			Name:       ptr("Ana"),
			IsLifetime: ptr(true),
		})
		require.NoError(t, err)

		_, err = store.Upsert(context.Background(), "a@b.c", user.Updates{
			SubscriptionStatus: ptr(user.StatusActive),
		})
		require.NoError(t, err)

		got, err := store.GetByEmail(context.Background(), "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		assert.True(t, got.IsLifetime)
		assert.Equal(t, user.StatusActive, got.SubscriptionStatus)
	})

	t.Run("empty update still bumps updated_at", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()

		first, err := store.Upsert(context.Background(), "a@b.c", user.Updates{})
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		second, err := store.Upsert(context.Background(), "a@b.c", user.Updates{})
		require.NoError(t, err)

		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("empty email rejected", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()
		_, err := store.Upsert(context.Background(), "", user.Updates{})
		assert.ErrorIs(t, err, user.ErrEmailRequired)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()
		_, err := store.GetByEmail(context.Background(), "nobody@b.c")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestMemoryStore_LinkBillingCustomer(t *testing.T) {
	t.Parallel()

	t.Run("creates the record when missing", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()

		id, err := store.LinkBillingCustomer(context.Background(), "a@b.c", "cus_1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", id)

		got, err := store.GetByEmail(context.Background(), "a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", got.BillingCustomerID)
	})

	t.Run("keeps the first stored id", func(t *testing.T) {
		t.Parallel()
		store := user.NewMemoryStore()

		_, err := store.LinkBillingCustomer(context.Background(), "a@b.c", "cus_1")
		require.NoError(t, err)

		id, err := store.LinkBillingCustomer(context.Background(), "a@b.c", "cus_2")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", id)
	})
}
