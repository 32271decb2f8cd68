package cart

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/lumina-backend/pkg/redis"
)

// RedisStore is the subset of the redis client the cart needs.
type RedisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(name, sessionID string) string
}

// RedisStorage keeps a browsing session's snapshot under one redis key.
type RedisStorage struct {
	store RedisStore
	key   string
	ttl   time.Duration
}

func NewRedisStorage(store RedisStore, name, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{store: store, key: store.CartKey(name, sessionID), ttl: ttl}
}

func (s *RedisStorage) Key() string {
	return s.key
}

func (s *RedisStorage) Load(ctx context.Context) (string, error) {
	value, err := s.store.Get(ctx, s.key)
	if errors.Is(err, redis.ErrNil) {
		return "", ErrNotFound
	}
	return value, err
}

// Save writes the snapshot and refreshes the TTL.
func (s *RedisStorage) Save(ctx context.Context, value string) error {
	return s.store.Set(ctx, s.key, value, s.ttl)
}
