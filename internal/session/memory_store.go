package session

import (
	"context"
	"sync"
	"time"

	"github.com/mindfixhq/mindfix/internal/user"
)

// MemoryStore implements Store with in-process maps. Used in tests and when
// no Redis is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	snapshots map[string]*user.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*Session),
		snapshots: make(map[string]*user.User),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[s.Token] = &cp
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.IsExpired() {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrSessionExpired
	}

	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.Token]; !ok {
		return ErrSessionNotFound
	}
	cp := *s
	m.sessions[s.Token] = &cp
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SetUserSnapshot(ctx context.Context, email string, u *user.User, ttl time.Duration) error {
	if email == "" || u == nil {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *u
	m.snapshots[email] = &cp
	return nil
}

func (m *MemoryStore) GetUserSnapshot(ctx context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.snapshots[email]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	cp := *u
	return &cp, nil
}

var _ Store = (*MemoryStore)(nil)
