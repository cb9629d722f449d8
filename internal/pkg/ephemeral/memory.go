package ephemeral

import (
	"context"
	"sync"
	"time"
)

// entryKey namespaces a key without string concatenation, so keys containing
// separator characters cannot collide across namespaces.
type entryKey struct {
	namespace string
	key       string
}

type entry struct {
	value     []byte
	writtenAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.writtenAt) > e.ttl
}

// MemoryStore is the in-process Store implementation. All operations are
// safe for concurrent use; counter updates are atomic per key.
//
// A process restart clears everything, which is the intended lifecycle for
// the session, presence and location data kept here.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[entryKey]entry
	counters map[entryKey]int64
	queues   map[entryKey][][]byte
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[entryKey]entry),
		counters: make(map[entryKey]int64),
		queues:   make(map[entryKey][][]byte),
		now:      time.Now,
	}
}

// Set writes value under namespace/key with the given TTL.
func (s *MemoryStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entryKey{namespace, key}] = entry{
		value:     append([]byte(nil), value...),
		writtenAt: s.now(),
		ttl:       ttl,
	}
	return nil
}

// Get reads the value under namespace/key, eagerly evicting it when expired.
func (s *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	k := entryKey{namespace, key}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		delete(s.entries, k)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Delete removes the entry under namespace/key.
func (s *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entryKey{namespace, key})
	return nil
}

// Exists reports whether a live entry is present under namespace/key.
func (s *MemoryStore) Exists(ctx context.Context, namespace, key string) (bool, error) {
	_, ok, err := s.Get(ctx, namespace, key)
	return ok, err
}

// List returns every live entry of the namespace keyed by its key.
func (s *MemoryStore) List(_ context.Context, namespace string) (map[string][]byte, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte)
	for k, e := range s.entries {
		if k.namespace != namespace {
			continue
		}
		if e.expired(now) {
			delete(s.entries, k)
			continue
		}
		out[k.key] = append([]byte(nil), e.value...)
	}
	return out, nil
}

// Increment atomically adds delta to the counter under namespace/key.
func (s *MemoryStore) Increment(_ context.Context, namespace, key string, delta int64) (int64, error) {
	k := entryKey{namespace, key}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[k] += delta
	return s.counters[k], nil
}

// Decrement atomically subtracts delta from the counter under namespace/key.
func (s *MemoryStore) Decrement(ctx context.Context, namespace, key string, delta int64) (int64, error) {
	return s.Increment(ctx, namespace, key, -delta)
}

// PushQueue appends value to the tail of the named FIFO queue.
func (s *MemoryStore) PushQueue(_ context.Context, namespace, queue string, value []byte) error {
	k := entryKey{namespace, queue}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queues[k] = append(s.queues[k], append([]byte(nil), value...))
	return nil
}

// PopQueue removes and returns the head of the named FIFO queue.
func (s *MemoryStore) PopQueue(_ context.Context, namespace, queue string) ([]byte, bool, error) {
	k := entryKey{namespace, queue}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[k]
	if len(q) == 0 {
		return nil, false, nil
	}

	head := q[0]
	if len(q) == 1 {
		delete(s.queues, k)
	} else {
		s.queues[k] = q[1:]
	}
	return head, true, nil
}

// Sweep evicts every expired entry so memory does not grow unbounded under
// write-heavy namespaces that are never read.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			evicted++
		}
	}
	return evicted, nil
}

// Close clears all state. The store is unusable afterwards only by convention;
// it is kept simple because nothing holds external resources.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[entryKey]entry)
	s.counters = make(map[entryKey]int64)
	s.queues = make(map[entryKey][][]byte)
	return nil
}
