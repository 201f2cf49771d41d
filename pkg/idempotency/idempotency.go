// Package idempotency deduplicates webhook deliveries. Vendors deliver
// at-least-once; a delivery seen before is acknowledged without being
// reprocessed. Keys identify one delivery (the vendor's notification id),
// never the notified object: the object's status changes between
// notifications and each one must be re-fetched.
package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	// Seen marks the key and reports whether it had been marked before.
	Seen(ctx context.Context, key string) (bool, error)
	// Forget unmarks a key so a redelivery is processed again. Used when
	// processing failed after the key was marked.
	Forget(ctx context.Context, key string) error
}

func Key(channel, deliveryID string) string {
	return fmt.Sprintf("wh:%s:delivery:%s", channel, deliveryID)
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (s *RedisStore) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// MemoryStore is the single-node fallback used when Redis is not
// configured. Entries older than the TTL are dropped lazily on access.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{seen: make(map[string]time.Time), ttl: ttl}
}

func (s *MemoryStore) Seen(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, k)
		}
	}

	if _, ok := s.seen[key]; ok {
		return true, nil
	}
	s.seen[key] = now
	return false, nil
}

func (s *MemoryStore) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, key)
	return nil
}
