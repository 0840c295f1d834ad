package user

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Used in tests and as
// the fallback when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, email string, updates Updates) (*User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	u, ok := m.users[email]
	if !ok {
		u = &User{
			Email:              email,
			SubscriptionStatus: StatusNone,
			CreatedAt:          now,
		}
		m.users[email] = u
	}

	if updates.Name != nil {
		u.Name = *updates.Name
	}
	if updates.IsLifetime != nil {
		u.IsLifetime = *updates.IsLifetime
	}
	if updates.AccessExpiresAt != nil {
		t := *updates.AccessExpiresAt
		u.AccessExpiresAt = &t
	}
	if updates.SubscriptionStatus != nil {
		u.SubscriptionStatus = *updates.SubscriptionStatus
	}
	if updates.PaymentVerified != nil {
		u.PaymentVerified = *updates.PaymentVerified
	}
	if updates.BillingCustomerID != nil {
		u.BillingCustomerID = *updates.BillingCustomerID
	}
	u.UpdatedAt = now

	cp := *u
	return &cp, nil
}

func (m *MemoryStore) LinkBillingCustomer(ctx context.Context, email, customerID string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	u, ok := m.users[email]
	if !ok {
		u = &User{
			Email:              email,
			SubscriptionStatus: StatusNone,
			CreatedAt:          now,
		}
		m.users[email] = u
	}

	if u.BillingCustomerID == "" {
		u.BillingCustomerID = customerID
	}
	u.UpdatedAt = now

	return u.BillingCustomerID, nil
}

var _ Store = (*MemoryStore)(nil)
