package ephemeral

import (
	"context"
	"time"
)

// NoTTL marks an entry that never expires.
const NoTTL time.Duration = 0

// Store is a namespaced key-value store with per-entry TTL, atomic counters
// and FIFO queues. It backs session bookkeeping, dispatch location caches and
// lightweight work queues.
//
// Implementations give no durability guarantee: callers must not rely on the
// store for data that has to survive a crash. An entry whose age exceeds its
// TTL reads as absent; implementations evict lazily on read and proactively
// via Sweep.
//
// Instances are constructed and owned by the composition root, never a
// process-wide singleton, so tests can run isolated stores in parallel.
type Store interface {
	// Set writes value under namespace/key. ttl <= 0 means the entry never expires.
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	// Get reads the value under namespace/key. Expired entries read as absent.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	// Delete removes the entry under namespace/key. Deleting a missing entry is a no-op.
	Delete(ctx context.Context, namespace, key string) error
	// Exists reports whether a live entry is present under namespace/key.
	Exists(ctx context.Context, namespace, key string) (bool, error)
	// List returns every live entry of a namespace keyed by its key.
	// Namespaces used with List should stay small (e.g. one entry per online
	// driver of a tenant).
	List(ctx context.Context, namespace string) (map[string][]byte, error)

	// Increment atomically adds delta to the counter under namespace/key and
	// returns the new value. A missing counter starts at zero.
	Increment(ctx context.Context, namespace, key string, delta int64) (int64, error)
	// Decrement atomically subtracts delta from the counter under namespace/key
	// and returns the new value.
	Decrement(ctx context.Context, namespace, key string, delta int64) (int64, error)

	// PushQueue appends value to the tail of the named FIFO queue.
	PushQueue(ctx context.Context, namespace, queue string, value []byte) error
	// PopQueue removes and returns the head of the named FIFO queue.
	// Popping an empty queue returns absent; it never blocks.
	PopQueue(ctx context.Context, namespace, queue string) ([]byte, bool, error)

	// Sweep evicts expired entries and returns how many were removed.
	// It is driven externally, typically by a cron job.
	Sweep(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
