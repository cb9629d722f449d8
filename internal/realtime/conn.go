package realtime

import (
	"sync"
	"time"

	"foodcourt/internal/core/domain/model/order"
)

// Sink is the transport side of a connection. The websocket adapter
// implements it; tests substitute an in-memory recorder.
type Sink interface {
	// Send writes one event to the client. Called from a single goroutine.
	Send(event Event) error
	// Close tears the transport down. Safe to call more than once.
	Close() error
}

// Conn is one registered client connection with its bounded outbox. Events
// are queued under a mutex and drained by a dedicated writer goroutine, so a
// slow client never blocks Publish.
type Conn struct {
	tenantID    string
	role        order.ActorRole
	principalID string

	sink     Sink
	capacity int

	mu       sync.Mutex
	outbox   []Event
	wakeup   chan struct{}
	closed   bool
	lastSeen time.Time

	onClose func(*Conn)
}

func newConn(tenantID string, role order.ActorRole, principalID string, sink Sink, capacity int) *Conn {
	return &Conn{
		tenantID:    tenantID,
		role:        role,
		principalID: principalID,
		sink:        sink,
		capacity:    capacity,
		wakeup:      make(chan struct{}, 1),
		lastSeen:    time.Now(),
	}
}

// TenantID returns the tenant the connection is scoped to.
func (c *Conn) TenantID() string { return c.tenantID }

// Role returns the role the connection authenticated as.
func (c *Conn) Role() order.ActorRole { return c.role }

// PrincipalID returns the authenticated principal (driver, customer, staff).
func (c *Conn) PrincipalID() string { return c.principalID }

// Touch records client activity for idle reaping. The transport calls it on
// every inbound frame, including heartbeats.
func (c *Conn) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// enqueue adds the event to the outbox, enforcing the overflow policy:
// when full, the oldest droppable event is evicted to make room; if every
// queued event is critical and the new one is too, the connection is closed
// as unrecoverably behind.
func (c *Conn) enqueue(event Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if len(c.outbox) >= c.capacity {
		if !c.dropOldestDroppableLocked() {
			if event.Critical() {
				c.mu.Unlock()
				c.Close()
				return
			}
			// Full of critical events; a droppable newcomer is the one to drop.
			c.mu.Unlock()
			return
		}
	}

	c.outbox = append(c.outbox, event)
	// Signalled under the lock so the wakeup channel cannot be closed between
	// the closed check and the send.
	select {
	case c.wakeup <- struct{}{}:
	default:
	}
	c.mu.Unlock()
}

func (c *Conn) dropOldestDroppableLocked() bool {
	for i, queued := range c.outbox {
		if !queued.Critical() {
			c.outbox = append(c.outbox[:i], c.outbox[i+1:]...)
			return true
		}
	}
	return false
}

// writeLoop drains the outbox to the sink until the connection closes.
func (c *Conn) writeLoop() {
	for range c.wakeup {
		for {
			c.mu.Lock()
			if len(c.outbox) == 0 {
				c.mu.Unlock()
				break
			}
			event := c.outbox[0]
			c.outbox = c.outbox[1:]
			c.mu.Unlock()

			if err := c.sink.Send(event); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Close unregisters the connection and closes the transport. Idempotent.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.outbox = nil
	close(c.wakeup)
	c.mu.Unlock()

	_ = c.sink.Close()
	if c.onClose != nil {
		c.onClose(c)
	}
}

func (c *Conn) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}
