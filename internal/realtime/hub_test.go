package realtime_test

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects sent events; block gates Send for backpressure tests.
type recordingSink struct {
	mu     sync.Mutex
	events []realtime.Event
	closed bool
	block  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{}
}

func newBlockedSink() *recordingSink {
	return &recordingSink{block: make(chan struct{})}
}

func (s *recordingSink) Send(event realtime.Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) snapshot() []realtime.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]realtime.Event(nil), s.events...)
}

func (s *recordingSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	require.Eventually(t, condition, 2*time.Second, 5*time.Millisecond)
}

func statusEvent(tenantID kernel.UUID, target realtime.Target) realtime.Event {
	return realtime.Event{
		Kind:      realtime.EventOrderStatusChanged,
		TenantID:  tenantID.String(),
		Timestamp: time.Now(),
	}.WithTarget(target)
}

func locationEvent(tenantID kernel.UUID, target realtime.Target) realtime.Event {
	return realtime.Event{
		Kind:      realtime.EventDriverLocation,
		TenantID:  tenantID.String(),
		Timestamp: time.Now(),
	}.WithTarget(target)
}

func TestHub_Publish(t *testing.T) {
	logger := slog.Default()

	t.Run("delivers_to_matching_role_in_tenant", func(t *testing.T) {
		hub := realtime.NewHub(logger, 0)
		defer hub.CloseAll()
		tenantID := kernel.NewUUID()

		kitchen := newRecordingSink()
		hub.Register(tenantID.String(), order.RoleKitchen, kernel.NewUUID().String(), kitchen)
		driver := newRecordingSink()
		hub.Register(tenantID.String(), order.RoleDriver, kernel.NewUUID().String(), driver)

		hub.Publish(statusEvent(tenantID, realtime.TargetRoles(tenantID, order.RoleKitchen)))

		waitFor(t, func() bool { return len(kitchen.snapshot()) == 1 })
		assert.Empty(t, driver.snapshot())
	})

	t.Run("never_crosses_tenants", func(t *testing.T) {
		hub := realtime.NewHub(logger, 0)
		defer hub.CloseAll()
		tenantA, tenantB := kernel.NewUUID(), kernel.NewUUID()

		sinkB := newRecordingSink()
		hub.Register(tenantB.String(), order.RoleKitchen, kernel.NewUUID().String(), sinkB)

		hub.Publish(statusEvent(tenantA, realtime.TargetRoles(tenantA, order.RoleKitchen)))

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, sinkB.snapshot())
	})

	t.Run("principal_target_reaches_only_that_principal", func(t *testing.T) {
		hub := realtime.NewHub(logger, 0)
		defer hub.CloseAll()
		tenantID := kernel.NewUUID()
		winner, loser := kernel.NewUUID(), kernel.NewUUID()

		winnerSink := newRecordingSink()
		hub.Register(tenantID.String(), order.RoleDriver, winner.String(), winnerSink)
		loserSink := newRecordingSink()
		hub.Register(tenantID.String(), order.RoleDriver, loser.String(), loserSink)

		hub.Publish(statusEvent(tenantID, realtime.TargetPrincipal(tenantID, order.RoleDriver, winner)))

		waitFor(t, func() bool { return len(winnerSink.snapshot()) == 1 })
		assert.Empty(t, loserSink.snapshot())
	})

	t.Run("publish_does_not_block_on_slow_consumer", func(t *testing.T) {
		hub := realtime.NewHub(logger, 4)
		defer hub.CloseAll()
		tenantID := kernel.NewUUID()

		slow := newBlockedSink()
		defer close(slow.block)
		hub.Register(tenantID.String(), order.RoleKitchen, kernel.NewUUID().String(), slow)

		done := make(chan struct{})
		go func() {
			for i := 0; i < 100; i++ {
				hub.Publish(locationEvent(tenantID, realtime.TargetRoles(tenantID, order.RoleKitchen)))
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked on a slow consumer")
		}
	})
}

func TestHub_Overflow(t *testing.T) {
	logger := slog.Default()

	t.Run("drops_oldest_droppable_event_when_full", func(t *testing.T) {
		hub := realtime.NewHub(logger, 2)
		defer hub.CloseAll()
		tenantID := kernel.NewUUID()
		target := realtime.TargetRoles(tenantID, order.RoleKitchen)

		sink := newBlockedSink()
		hub.Register(tenantID.String(), order.RoleKitchen, kernel.NewUUID().String(), sink)

		// One event is parked in the blocked sink; fill the outbox behind it.
		hub.Publish(locationEvent(tenantID, target))
		time.Sleep(20 * time.Millisecond)
		hub.Publish(locationEvent(tenantID, target))
		hub.Publish(locationEvent(tenantID, target))
		hub.Publish(statusEvent(tenantID, target))

		close(sink.block)

		waitFor(t, func() bool {
			events := sink.snapshot()
			return len(events) > 0 && events[len(events)-1].Kind == realtime.EventOrderStatusChanged
		})
		assert.False(t, sink.isClosed())
	})

	t.Run("closes_connection_on_critical_overflow", func(t *testing.T) {
		hub := realtime.NewHub(logger, 2)
		tenantID := kernel.NewUUID()
		target := realtime.TargetRoles(tenantID, order.RoleKitchen)

		sink := newBlockedSink()
		defer close(sink.block)
		hub.Register(tenantID.String(), order.RoleKitchen, kernel.NewUUID().String(), sink)

		// Park one critical event in the sink, then overfill with criticals.
		for i := 0; i < 5; i++ {
			hub.Publish(statusEvent(tenantID, target))
		}

		waitFor(t, func() bool { return sink.isClosed() })
		waitFor(t, func() bool { return hub.ConnectionCount() == 0 })
	})
}

func TestHub_ReapIdle(t *testing.T) {
	logger := slog.Default()
	hub := realtime.NewHub(logger, 0)
	defer hub.CloseAll()
	tenantID := kernel.NewUUID()

	idle := newRecordingSink()
	hub.Register(tenantID.String(), order.RoleDriver, kernel.NewUUID().String(), idle)
	active := newRecordingSink()
	activeConn := hub.Register(tenantID.String(), order.RoleDriver, kernel.NewUUID().String(), active)

	time.Sleep(50 * time.Millisecond)
	activeConn.Touch()

	closed := hub.ReapIdle(30 * time.Millisecond)

	assert.Equal(t, 1, closed)
	assert.True(t, idle.isClosed())
	assert.False(t, active.isClosed())
	assert.Equal(t, 1, hub.ConnectionCount())
}
