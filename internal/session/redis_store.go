package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindfixhq/mindfix/internal/user"
)

// RedisStore implements Store on go-redis with JSON values. Session TTL is
// enforced by Redis expiry in addition to the ExpiresAt check.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("session: redis client is required")
	}
	if prefix == "" {
		prefix = "mindfix"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, token)
}

func (r *RedisStore) snapshotKey(email string) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, email)
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	return r.client.Set(ctx, r.sessionKey(s.Token), data, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.IsExpired() {
		_ = r.client.Del(ctx, r.sessionKey(token)).Err()
		return nil, ErrSessionExpired
	}
	return &s, nil
}

func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidSession
	}

	exists, err := r.client.Exists(ctx, r.sessionKey(s.Token)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.sessionKey(s.Token), data, time.Until(s.ExpiresAt)).Err()
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.sessionKey(token)).Err()
}

func (r *RedisStore) SetUserSnapshot(ctx context.Context, email string, u *user.User, ttl time.Duration) error {
	if email == "" || u == nil {
		return ErrInvalidSession
	}

	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.snapshotKey(email), data, ttl).Err()
}

func (r *RedisStore) GetUserSnapshot(ctx context.Context, email string) (*user.User, error) {
	data, err := r.client.Get(ctx, r.snapshotKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	var u user.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ Store = (*RedisStore)(nil)
