package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"comanda/internal/idempotency"
)

const (
	keyPrefix    = "idempotency:"
	pendingValue = `{"pending":true}`
)

// IdempotencyStore shares Idempotency-Key state between server instances.
type IdempotencyStore struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*IdempotencyStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &IdempotencyStore{rdb: rdb}, nil
}

func (s *IdempotencyStore) Close() error {
	return s.rdb.Close()
}

type entry struct {
	Pending  bool                  `json:"pending"`
	Response *idempotency.Response `json:"response,omitempty"`
}

func (s *IdempotencyStore) Begin(ctx context.Context, key string, ttl time.Duration) (*idempotency.Response, bool, error) {
	ok, err := s.rdb.SetNX(ctx, keyPrefix+key, pendingValue, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("claiming idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	val, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; treat as in flight and let the client retry.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading idempotency key: %w", err)
	}

	var e entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, false, fmt.Errorf("decoding idempotency entry: %w", err)
	}
	return e.Response, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp idempotency.Response, ttl time.Duration) error {
	data, err := json.Marshal(entry{Response: &resp})
	if err != nil {
		return fmt.Errorf("encoding idempotency entry: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+key, data, ttl).Err()
}

func (s *IdempotencyStore) Abort(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}
