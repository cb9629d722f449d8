// Package realtime is the in-process hub that pushes order lifecycle events
// to connected clients: tenant dashboards, kitchen displays, driver apps and
// customer trackers.
//
// Connections register with an identity (tenant, role, principal) and events
// carry a Target selecting which identities receive them. Each connection
// owns a bounded outbox drained by its own writer goroutine, so publishing
// never blocks on a slow consumer: when an outbox overflows, the oldest
// droppable event is evicted, and a connection too far behind to receive a
// critical event is closed so the client reconnects and resynchronizes from
// the durable store.
package realtime
