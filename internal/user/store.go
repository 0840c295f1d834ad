package user

import (
	"context"
	"errors"
)

var (
	ErrEmailRequired = errors.New("user email is required")
	ErrUserNotFound  = errors.New("user not found")
)

// Store defines persistence for user records. Email is the conflict key for
// all writes; there is no other identifier at this layer.
type Store interface {
	// GetByEmail returns the full record or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Upsert creates or updates the record identified by email, applying only
	// the fields set in updates, and returns the resulting full record.
	// updated_at is bumped on every call.
	Upsert(ctx context.Context, email string, updates Updates) (*User, error)

	// LinkBillingCustomer persists the payment-provider customer id for email
	// only if none is stored yet, creating the record when missing. It returns
	// the id that ended up stored, which is the existing one when the
	// conditional write loses. Callers that created a fresh provider customer
	// must adopt the returned id.
	LinkBillingCustomer(ctx context.Context, email, customerID string) (string, error)
}
