package ephemeral_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"foodcourt/internal/pkg/ephemeral"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store := ephemeral.NewMemoryStore()

	t.Run("round_trips_a_value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "sessions", "u1", []byte("token"), ephemeral.NoTTL))

		got, ok, err := store.Get(ctx, "sessions", "u1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("token"), got)
	})

	t.Run("missing_key_reads_as_absent", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "sessions", "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("namespaces_are_isolated", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "a", "k", []byte("1"), ephemeral.NoTTL))
		require.NoError(t, store.Set(ctx, "b", "k", []byte("2"), ephemeral.NoTTL))

		got, _, err := store.Get(ctx, "a", "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), got)
	})

	t.Run("delete_and_exists", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "sessions", "gone", []byte("x"), ephemeral.NoTTL))
		require.NoError(t, store.Delete(ctx, "sessions", "gone"))

		ok, err := store.Exists(ctx, "sessions", "gone")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()

	t.Run("expired_entry_reads_as_absent_without_sweep", func(t *testing.T) {
		store := ephemeral.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "cache", "k", []byte("v"), time.Second))

		time.Sleep(1100 * time.Millisecond)

		_, ok, err := store.Get(ctx, "cache", "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("live_entry_survives_its_ttl_window", func(t *testing.T) {
		store := ephemeral.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "cache", "k", []byte("v"), time.Minute))

		_, ok, err := store.Get(ctx, "cache", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("sweep_evicts_expired_entries", func(t *testing.T) {
		store := ephemeral.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "cache", "short", []byte("v"), 10*time.Millisecond))
		require.NoError(t, store.Set(ctx, "cache", "long", []byte("v"), time.Minute))

		time.Sleep(30 * time.Millisecond)

		evicted, err := store.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, evicted)

		ok, err := store.Exists(ctx, "cache", "long")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemoryStore_Counters(t *testing.T) {
	ctx := context.Background()
	store := ephemeral.NewMemoryStore()

	t.Run("increment_and_decrement", func(t *testing.T) {
		v, err := store.Increment(ctx, "counters", "online", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)

		v, err = store.Decrement(ctx, "counters", "online", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
	})

	t.Run("concurrent_increments_do_not_lose_updates", func(t *testing.T) {
		const goroutines = 32
		const perGoroutine = 100

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perGoroutine; j++ {
					_, _ = store.Increment(ctx, "counters", "hits", 1)
				}
			}()
		}
		wg.Wait()

		v, err := store.Increment(ctx, "counters", "hits", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(goroutines*perGoroutine), v)
	})
}

func TestMemoryStore_Queues(t *testing.T) {
	ctx := context.Background()
	store := ephemeral.NewMemoryStore()

	t.Run("fifo_order", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, store.PushQueue(ctx, "dispatch", "offers", []byte(fmt.Sprintf("o%d", i))))
		}

		for i := 0; i < 3; i++ {
			got, ok, err := store.PopQueue(ctx, "dispatch", "offers")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte(fmt.Sprintf("o%d", i)), got)
		}
	})

	t.Run("pop_on_empty_queue_returns_absent", func(t *testing.T) {
		_, ok, err := store.PopQueue(ctx, "dispatch", "empty")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	store := ephemeral.NewMemoryStore()

	require.NoError(t, store.Set(ctx, "presence", "d1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "presence", "d2", []byte("b"), 10*time.Millisecond))
	require.NoError(t, store.Set(ctx, "other", "d3", []byte("c"), time.Minute))

	time.Sleep(30 * time.Millisecond)

	entries, err := store.List(ctx, "presence")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"d1": []byte("a")}, entries)
}
