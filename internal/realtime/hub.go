package realtime

import (
	"log/slog"
	"sync"
	"time"

	"foodcourt/internal/core/domain/model/order"
)

// DefaultOutboxCapacity bounds the per-connection event queue.
const DefaultOutboxCapacity = 64

// Hub routes events to registered client connections. All methods are safe
// for concurrent use. Publish is non-blocking regardless of how slow any
// client is: backpressure is absorbed by each connection's bounded outbox.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*Conn]struct{}
	capacity int
	logger   *slog.Logger
}

// NewHub creates a hub with the given per-connection outbox capacity.
// capacity <= 0 falls back to DefaultOutboxCapacity.
func NewHub(logger *slog.Logger, capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	return &Hub{
		conns:    make(map[*Conn]struct{}),
		capacity: capacity,
		logger:   logger.With("component", "realtime-hub"),
	}
}

// Register adds an authenticated connection and starts its writer goroutine.
// The returned Conn is already receiving events for its identity.
func (h *Hub) Register(tenantID string, role order.ActorRole, principalID string, sink Sink) *Conn {
	conn := newConn(tenantID, role, principalID, sink, h.capacity)
	conn.onClose = h.unregister

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go conn.writeLoop()

	h.logger.Debug("connection registered",
		"tenantId", tenantID, "role", string(role), "principalId", principalID)
	return conn
}

func (h *Hub) unregister(conn *Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Publish fans the event out to every connection matching its target.
// It returns immediately; delivery happens on the connections' writer
// goroutines.
func (h *Hub) Publish(event Event) {
	target := event.Target()

	h.mu.RLock()
	matched := make([]*Conn, 0, 4)
	for conn := range h.conns {
		if target.Matches(conn.tenantID, conn.role, conn.principalID) {
			matched = append(matched, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range matched {
		conn.enqueue(event)
	}
}

// ConnectionCount returns the number of live connections, for health
// reporting and tests.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// ReapIdle closes every connection that has not shown activity within
// maxIdle. Returns how many connections were closed. Called periodically by
// the connection reaper job.
func (h *Hub) ReapIdle(maxIdle time.Duration) int {
	now := time.Now()

	h.mu.RLock()
	stale := make([]*Conn, 0)
	for conn := range h.conns {
		if conn.idleSince(now) > maxIdle {
			stale = append(stale, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range stale {
		h.logger.Info("closing idle connection",
			"tenantId", conn.tenantID, "role", string(conn.role), "principalId", conn.principalID)
		conn.Close()
	}
	return len(stale)
}

// CloseAll tears down every connection, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.Close()
	}
}
