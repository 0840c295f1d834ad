package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/mindfixhq/mindfix/internal/user"
)

type Config struct {
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"mindfix_session"` // CookieName carries the session token.
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"720h"`                    // TTL is the session lifetime.
	SnapshotTTL   time.Duration `env:"SESSION_SNAPSHOT_TTL" envDefault:"720h"`           // SnapshotTTL bounds the cached user snapshot.
	SecureCookies bool          `env:"SESSION_SECURE_COOKIES" envDefault:"true"`         // SecureCookies marks the cookie Secure; disable for local http.
}

// Manager creates, hydrates, and persists sessions through the cookie token.
type Manager struct {
	store Store
	cfg   Config
}

func NewManager(store Store, cfg Config) *Manager {
	if store == nil {
		panic("session: store is required")
	}
	return &Manager{store: store, cfg: cfg}
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Start creates a fresh session and sets its cookie. Used on sign-up and
// sign-in; any previous session for the browser is abandoned.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, email string) (*Session, error) {
	s := New(newToken(), m.cfg.TTL)
	s.Email = email

	// Hydrate the cached user snapshot if one survived a previous session.
	if email != "" {
		if snap, err := m.store.GetUserSnapshot(ctx, email); err == nil {
			s.User = snap
		}
	}

	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	m.setCookie(w, s.Token, m.cfg.TTL)
	return s, nil
}

// Load resolves the request's session from its cookie.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrSessionNotFound
	}
	return m.store.Get(ctx, c.Value)
}

// Save persists session mutations (quiz result, refreshed user snapshot).
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Update(ctx, s)
}

// Destroy removes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(m.cfg.CookieName)
	if err == nil && c.Value != "" {
		if err := m.store.Delete(ctx, c.Value); err != nil {
			return err
		}
	}
	m.setCookie(w, "", -1)
	return nil
}

// MirrorUser implements user.Mirror: it caches the synced record under the
// user's email so the next session start picks it up. Failures here are the
// caller's suppressed warnings, never fatal.
func (m *Manager) MirrorUser(ctx context.Context, u *user.User) error {
	if u == nil || u.Email == "" {
		return ErrInvalidSession
	}
	return m.store.SetUserSnapshot(ctx, u.Email, u, m.cfg.SnapshotTTL)
}

func (m *Manager) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
