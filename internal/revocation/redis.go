package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "revoked:"

type RedisStore struct {
	Client redis.Cmdable
	Prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{Client: client, Prefix: defaultRedisPrefix, now: time.Now}
}

func (s *RedisStore) Add(ctx context.Context, key string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return true, nil
	}

	added, err := s.Client.SetNX(ctx, s.Prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return added, nil
}

func (s *RedisStore) Contains(ctx context.Context, key string) (bool, error) {
	n, err := s.Client.Exists(ctx, s.Prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}
