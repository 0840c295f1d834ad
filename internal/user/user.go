package user

import (
	"time"
)

// SubscriptionStatus is the provider-reported state of a user's subscription.
// Kept as a closed set so the entitlement check can switch exhaustively
// instead of comparing against a free-form string.
type SubscriptionStatus string

const (
	StatusNone       SubscriptionStatus = "none"
	StatusActive     SubscriptionStatus = "active"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
)

// ParseStatus normalizes a raw status value into the closed set.
// Unknown values map to StatusNone so they never grant access.
func ParseStatus(raw string) SubscriptionStatus {
	switch SubscriptionStatus(raw) {
	case StatusActive, StatusPastDue, StatusCanceled, StatusIncomplete:
		return SubscriptionStatus(raw)
	default:
		return StatusNone
	}
}

// User is one row of the user record store, keyed by unique email.
type User struct {
	Email              string             `json:"email"`
	Name               string             `json:"name,omitempty"`
	IsLifetime         bool               `json:"is_lifetime"`
	AccessExpiresAt    *time.Time         `json:"access_expires_at,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	PaymentVerified    bool               `json:"payment_verified"`
	BillingCustomerID  string             `json:"stripe_customer_id,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// IsEntitledAt reports whether the user may access protected content at the
// given instant. Priority order is fixed: a lifetime grant overrides
// everything, then an unexpired access window, then an active and
// payment-verified subscription. An expired window does not block the
// subscription check.
func (u *User) IsEntitledAt(now time.Time) bool {
	if u == nil {
		return false
	}
	if u.IsLifetime {
		return true
	}
	if u.AccessExpiresAt != nil && u.AccessExpiresAt.After(now) {
		return true
	}
	return u.SubscriptionStatus == StatusActive && u.PaymentVerified
}

// IsEntitled reports entitlement against the current clock.
func (u *User) IsEntitled() bool {
	return u.IsEntitledAt(time.Now().UTC())
}

// Updates is a partial field set applied through Upsert. Nil fields are left
// untouched on conflict; set fields win last-writer-wins.
type Updates struct {
	Name               *string
	IsLifetime         *bool
	AccessExpiresAt    *time.Time
	SubscriptionStatus *SubscriptionStatus
	PaymentVerified    *bool
	BillingCustomerID  *string
}

// IsEmpty reports whether no field is set. An empty update still bumps
// updated_at, which is how the login sync works.
func (u Updates) IsEmpty() bool {
	return u.Name == nil &&
		u.IsLifetime == nil &&
		u.AccessExpiresAt == nil &&
		u.SubscriptionStatus == nil &&
		u.PaymentVerified == nil &&
		u.BillingCustomerID == nil
}
