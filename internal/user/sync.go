package user

import (
	"context"
	"io"
	"log/slog"
)

// Mirror receives best-effort copies of synced records. The session layer
// implements it to keep the signed-in user's cached snapshot fresh. Mirror
// failures never fail the sync; they are collected as suppressed warnings.
type Mirror interface {
	MirrorUser(ctx context.Context, u *User) error
}

// SyncResult separates the primary upsert outcome from side effects that are
// allowed to fail silently.
type SyncResult struct {
	// User is the record after the upsert, nil when the store write failed.
	User *User
	// Suppressed holds mirror errors that were swallowed.
	Suppressed []error
}

// Failed reports whether the primary store write failed.
func (r *SyncResult) Failed() bool {
	return r == nil || r.User == nil
}

// SyncService centralizes user updates: one upsert against the store, then a
// best-effort mirror into the session cache.
type SyncService struct {
	store  Store
	mirror Mirror
	log    *slog.Logger
}

type SyncOption func(*SyncService)

// WithMirror attaches a best-effort cache mirror.
func WithMirror(m Mirror) SyncOption {
	return func(s *SyncService) { s.mirror = m }
}

func WithSyncLogger(log *slog.Logger) SyncOption {
	return func(s *SyncService) { s.log = log }
}

func NewSyncService(store Store, opts ...SyncOption) *SyncService {
	if store == nil {
		panic("user: store is required")
	}
	s := &SyncService{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveUser upserts the record keyed by email and mirrors the result into the
// cache. Store errors are logged and reported through a failed result rather
// than raised; mirror errors are swallowed into Suppressed.
func (s *SyncService) SaveUser(ctx context.Context, email string, updates Updates) *SyncResult {
	res := &SyncResult{}

	if email == "" {
		s.log.ErrorContext(ctx, "save user called without email")
		return res
	}

	u, err := s.store.Upsert(ctx, email, updates)
	if err != nil {
		s.log.ErrorContext(ctx, "save user upsert failed", "email", email, "error", err)
		return res
	}
	res.User = u

	if s.mirror != nil {
		if err := s.mirror.MirrorUser(ctx, u); err != nil {
			s.log.WarnContext(ctx, "user cache mirror failed", "email", email, "error", err)
			res.Suppressed = append(res.Suppressed, err)
		}
	}

	return res
}
