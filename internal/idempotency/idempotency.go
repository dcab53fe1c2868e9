// Package idempotency remembers which order an Idempotency-Key produced, so
// a retried POST /api/orders returns the original order instead of placing
// a second one.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeMC777/construmarket/internal/order"
)

// Values are stored as "<fingerprint>|<orderID>"; the order id is empty
// while the first request is still running.
const (
	keyPrefix = "idem:"
	sep       = "|"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Claim(ctx context.Context, key, fingerprint string) (string, error) {
	k := keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, fingerprint+sep, s.ttl).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return "", nil
	}
	v, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; treat as in flight and let the client retry
		return "", order.ErrInFlight
	}
	if err != nil {
		return "", err
	}
	fp, orderID, _ := strings.Cut(v, sep)
	return check(fp, orderID, fingerprint)
}

func (s *RedisStore) Complete(ctx context.Context, key, fingerprint, orderID string) error {
	return s.client.Set(ctx, keyPrefix+key, fingerprint+sep+orderID, s.ttl).Err()
}

func check(stored, orderID, fingerprint string) (string, error) {
	switch {
	case stored != fingerprint:
		return "", order.ErrKeyReused
	case orderID == "":
		return "", order.ErrInFlight
	default:
		return orderID, nil
	}
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.client.Close() }

type entry struct {
	fingerprint string
	orderID     string
	expires     time.Time
}

// Memory is an in-process Store for single-instance deployments and tests.
type Memory struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]entry
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, keys: map[string]entry{}, now: time.Now}
}

func (m *Memory) Claim(_ context.Context, key, fingerprint string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.keys[key]
	if !ok || now.After(e.expires) {
		m.keys[key] = entry{fingerprint: fingerprint, expires: now.Add(m.ttl)}
		return "", nil
	}
	return check(e.fingerprint, e.orderID, fingerprint)
}

func (m *Memory) Complete(_ context.Context, key, fingerprint, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = entry{fingerprint: fingerprint, orderID: orderID, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// Store is an order.Idempotency that main can health-check and close.
type Store interface {
	order.Idempotency
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*Memory)(nil)
)
