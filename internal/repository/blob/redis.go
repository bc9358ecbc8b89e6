package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps slot blobs in redis. Entries never expire: eviction is
// driven by the disk cache index, not by redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// ConnectTimeout bounds the retries of the initial ping.
	ConnectTimeout time.Duration
}

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = timeout

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "tile:blob"
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}, nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) keyFor(slot int) string {
	return fmt.Sprintf("%s:%d", s.prefix, slot)
}

func (s *RedisStore) Get(ctx context.Context, slot int) ([]byte, error) {
	data, err := s.client.Get(ctx, s.keyFor(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, slot int, data []byte) error {
	if err := s.client.Set(ctx, s.keyFor(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, slot int) error {
	if err := s.client.Del(ctx, s.keyFor(slot)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
