package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the subset of the go-redis client used by RedisStore.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps entries in Redis under a key prefix.
type RedisStore struct {
	Client RedisClient
	Prefix string
}

// NewRedisStore connects to the Redis server at url, e.g. redis://localhost:6379/0.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisStore{Client: redis.NewClient(opts), Prefix: "idempotency:"}, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	c, ok := s.Client.(*redis.Client)
	if !ok {
		return nil
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	value, err := encode(pendingEntry())
	if err != nil {
		return false, err
	}
	ok, err := s.Client.SetNX(ctx, s.Prefix+key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.Client.Get(ctx, s.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}
	entry, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode idempotency entry: %w", err)
	}
	return entry, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	entry.State = stateDone
	value, err := encode(entry)
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.Prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, s.Prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
