package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfixhq/mindfix/internal/user"
)

type recordingMirror struct {
	mirrored []*user.User
	err      error
}

func (m *recordingMirror) MirrorUser(ctx context.Context, u *user.User) error {
	if m.err != nil {
		return m.err
	}
	m.mirrored = append(m.mirrored, u)
	return nil
}

type brokenStore struct{}

func (brokenStore) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, errors.New("store offline")
}

func (brokenStore) Upsert(context.Context, string, user.Updates) (*user.User, error) {
	return nil, errors.New("store offline")
}

func (brokenStore) LinkBillingCustomer(context.Context, string, string) (string, error) {
	return "", errors.New("store offline")
}

func TestSyncService_SaveUser(t *testing.T) {
	t.Parallel()

	t.Run("upserts and mirrors on success", func(t *testing.T) {
		t.Parallel()
		mirror := &recordingMirror{}
		svc := user.NewSyncService(user.NewMemoryStore(), user.WithMirror(mirror))

		res := svc.SaveUser(context.Background(), "a@b.c", user.Updates{Name: ptr("Ana")})

		require.False(t, res.Failed())
		assert.Equal(t, "a@b.c", res.User.Email)
		assert.Equal(t, "Ana", res.User.Name)
		assert.Empty(t, res.Suppressed)
		require.Len(t, mirror.mirrored, 1)
		assert.Equal(t, "a@b.c", mirror.mirrored[0].Email)
	})

	t.Run("mirror failure is swallowed into suppressed warnings", func(t *testing.T) {
		t.Parallel()
		mirror := &recordingMirror{err: errors.New("cache unavailable")}
		svc := user.NewSyncService(user.NewMemoryStore(), user.WithMirror(mirror))

		res := svc.SaveUser(context.Background(), "a@b.c", user.Updates{})

		require.False(t, res.Failed())
		require.Len(t, res.Suppressed, 1)
		assert.Contains(t, res.Suppressed[0].Error(), "cache unavailable")
	})

	t.Run("store failure yields failed result, no panic no error", func(t *testing.T) {
		t.Parallel()
		svc := user.NewSyncService(brokenStore{})

		res := svc.SaveUser(context.Background(), "a@b.c", user.Updates{})

		assert.True(t, res.Failed())
		assert.Nil(t, res.User)
	})

	t.Run("empty email yields failed result", func(t *testing.T) {
		t.Parallel()
		svc := user.NewSyncService(user.NewMemoryStore())

		res := svc.SaveUser(context.Background(), "", user.Updates{})

		assert.True(t, res.Failed())
	})

	t.Run("works without a mirror", func(t *testing.T) {
		t.Parallel()
		svc := user.NewSyncService(user.NewMemoryStore())

		res := svc.SaveUser(context.Background(), "a@b.c", user.Updates{})

		assert.False(t, res.Failed())
		assert.Empty(t, res.Suppressed)
	})
}
