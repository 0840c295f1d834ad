package session

import (
	"context"
	"errors"
	"time"

	"github.com/mindfixhq/mindfix/internal/user"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidSession   = errors.New("invalid session")
	ErrSnapshotNotFound = errors.New("user snapshot not found")
)

// Store persists sessions, keyed by token, plus best-effort user snapshots
// keyed by email (the server-side stand-in for the original localStorage
// "user" entry).
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error

	// SetUserSnapshot caches the latest known record for an email.
	SetUserSnapshot(ctx context.Context, email string, u *user.User, ttl time.Duration) error
	// GetUserSnapshot returns the cached record or ErrSnapshotNotFound.
	GetUserSnapshot(ctx context.Context, email string) (*user.User, error)
}
