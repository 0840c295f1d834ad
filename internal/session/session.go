// Package session replaces the original ad-hoc browser storage with an
// explicit server-side session: the signed-in email, a cached snapshot of the
// user record, and the onboarding quiz result, hydrated once per request from
// the persisted store.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mindfixhq/mindfix/internal/user"
)

// QuizResult is the read-only display pair produced by the onboarding quiz.
type QuizResult struct {
	ProtocolName string `json:"protocolName"`
	Description  string `json:"description"`
}

// Session is the per-visitor state. User is a cached snapshot, not the source
// of truth; entitlement decisions always re-read the store.
type Session struct {
	ID         uuid.UUID   `json:"id"`
	Token      string      `json:"token"`
	Email      string      `json:"email,omitempty"`
	User       *user.User  `json:"user,omitempty"`
	QuizResult *QuizResult `json:"quiz_result,omitempty"`
	ExpiresAt  time.Time   `json:"expires_at"`
	CreatedAt  time.Time   `json:"created_at"`
}

// New creates an anonymous session with the given lifetime.
func New(token string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsAuthenticated reports whether a sign-in bound an email to this session.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Email != ""
}

// IsExpired reports whether the session lifetime has passed.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
