// Package entitlement decides where a user lands after sign-in: the
// protected area or the plan-selection page. The decision is one synchronous
// read of the user record store, no retries.
package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mindfixhq/mindfix/internal/user"
)

// Access is the terminal state of one resolution.
type Access string

const (
	// AccessLifetime: permanent grant, overrides everything else.
	AccessLifetime Access = "lifetime"
	// AccessTimeBound: access_expires_at is set and still in the future.
	AccessTimeBound Access = "time_bound_valid"
	// AccessSubscription: active subscription with verified payment.
	AccessSubscription Access = "subscription_active"
	// AccessNone: record found, nothing grants access.
	AccessNone Access = "no_access"
	// AccessLookupError: the lookup itself failed or found no row. Fails open:
	// local-only accounts have no store row and must still get in.
	AccessLookupError Access = "lookup_error"
	// AccessLocalOnly: no store configured at all.
	AccessLocalOnly Access = "local_only"
)

// Granted reports whether the state routes to the protected area.
func (a Access) Granted() bool {
	switch a {
	case AccessLifetime, AccessTimeBound, AccessSubscription, AccessLookupError, AccessLocalOnly:
		return true
	case AccessNone:
		return false
	default:
		return false
	}
}

// Denial reasons carried to the plan page as ?reason=.
const (
	ReasonInactive = "inactive"
	ReasonError    = "error"
)

// Routes the resolver decides between.
const (
	RouteProtected = "/dashboard"
	RoutePlans     = "/subscription"
)

// Decision is the outcome of a resolution: the access state, the redirect
// target, and the denial reason when routed to the plan page.
type Decision struct {
	Access   Access
	Redirect string
	Reason   string
}

func granted(a Access) Decision {
	return Decision{Access: a, Redirect: RouteProtected}
}

func denied(a Access, reason string) Decision {
	return Decision{Access: a, Redirect: RoutePlans + "?reason=" + reason}
}

// Resolver reads the user record and applies the fixed priority order.
type Resolver struct {
	store user.Store
	now   func() time.Time
	log   *slog.Logger
}

type Option func(*Resolver)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a resolver. A nil store means the record store is not
// configured and every account is treated as local-only.
func NewResolver(store user.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve decides the post-login destination for email. Rules are evaluated
// in priority order: unreachable or missing record fails open to the
// protected area, then lifetime, then an unexpired access window, then an
// active verified subscription; anything else is denied with "inactive".
func (r *Resolver) Resolve(ctx context.Context, email string) Decision {
	if r.store == nil {
		return granted(AccessLocalOnly)
	}

	u, err := r.store.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			r.log.WarnContext(ctx, "entitlement lookup failed, failing open", "email", email, "error", err)
		}
		return granted(AccessLookupError)
	}

	if u.IsLifetime {
		return granted(AccessLifetime)
	}

	now := r.now()
	if u.AccessExpiresAt != nil && u.AccessExpiresAt.After(now) {
		return granted(AccessTimeBound)
	}

	switch u.SubscriptionStatus {
	case user.StatusActive:
		if u.PaymentVerified {
			return granted(AccessSubscription)
		}
		return denied(AccessNone, ReasonInactive)
	case user.StatusPastDue, user.StatusCanceled, user.StatusIncomplete, user.StatusNone:
		return denied(AccessNone, ReasonInactive)
	default:
		// Unknown provider status never grants access.
		return denied(AccessNone, ReasonInactive)
	}
}
