// Package redis adapts a Redis instance to the ephemeral.Store port. It is the
// store used when the app runs more than one instance: presence pings and
// session counters must be visible to every process, and Redis expires entries
// natively so no sweeper is needed.
package redis

import (
	"context"
	"strings"
	"time"

	"foodcourt/internal/pkg/ephemeral"

	"github.com/redis/go-redis/v9"
)

// Key layout. Values, counters and queues live under distinct prefixes so a
// counter can never shadow a value written under the same namespace/key.
const (
	valuePrefix   = "kv:"
	counterPrefix = "ctr:"
	queuePrefix   = "q:"
)

// Store implements ephemeral.Store on top of a Redis client. The client is
// owned by the caller's composition root; Close closes it.
type Store struct {
	client *redis.Client
}

// NewStore wraps an already-connected Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// NewClient dials Redis at addr with the library defaults.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Set writes value under namespace/key with the given TTL.
func (s *Store) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // redis treats 0 as "no expiration"
	}
	return s.client.Set(ctx, valueKey(namespace, key), value, ttl).Err()
}

// Get reads the value under namespace/key. Expired entries read as absent.
func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, valueKey(namespace, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Delete removes the entry under namespace/key.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	return s.client.Del(ctx, valueKey(namespace, key)).Err()
}

// Exists reports whether a live entry is present under namespace/key.
func (s *Store) Exists(ctx context.Context, namespace, key string) (bool, error) {
	n, err := s.client.Exists(ctx, valueKey(namespace, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every live entry of the namespace. Entries can expire between
// the scan and the read; those read as absent and are skipped.
func (s *Store) List(ctx context.Context, namespace string) (map[string][]byte, error) {
	prefix := valueKey(namespace, "")
	out := make(map[string][]byte)

	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		raw, err := s.client.Get(ctx, fullKey).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(fullKey, prefix)] = raw
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Increment atomically adds delta to the counter under namespace/key.
func (s *Store) Increment(ctx context.Context, namespace, key string, delta int64) (int64, error) {
	return s.client.IncrBy(ctx, counterKey(namespace, key), delta).Result()
}

// Decrement atomically subtracts delta from the counter under namespace/key.
func (s *Store) Decrement(ctx context.Context, namespace, key string, delta int64) (int64, error) {
	return s.client.DecrBy(ctx, counterKey(namespace, key), delta).Result()
}

// PushQueue appends value to the tail of the named FIFO queue.
func (s *Store) PushQueue(ctx context.Context, namespace, queue string, value []byte) error {
	return s.client.RPush(ctx, queueKey(namespace, queue), value).Err()
}

// PopQueue removes and returns the head of the named FIFO queue.
func (s *Store) PopQueue(ctx context.Context, namespace, queue string) ([]byte, bool, error) {
	raw, err := s.client.LPop(ctx, queueKey(namespace, queue)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Sweep is a no-op: Redis evicts expired keys on its own.
func (s *Store) Sweep(context.Context) (int, error) {
	return 0, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ ephemeral.Store = (*Store)(nil)

func valueKey(namespace, key string) string {
	return valuePrefix + namespace + ":" + key
}

func counterKey(namespace, key string) string {
	return counterPrefix + namespace + ":" + key
}

func queueKey(namespace, key string) string {
	return queuePrefix + namespace + ":" + key
}
