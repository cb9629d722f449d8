package realtime

import (
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
)

// EventKind names the realtime event types pushed to clients.
type EventKind string

const (
	// EventOrderCreated announces a new order to the tenant's dashboard and kitchen.
	EventOrderCreated EventKind = "order_created"
	// EventOrderStatusChanged announces a lifecycle transition.
	EventOrderStatusChanged EventKind = "order_status_changed"
	// EventOrderOffer offers a ready order to a specific driver.
	EventOrderOffer EventKind = "order_offer"
	// EventOrderTaken tells losing drivers that an offered order is gone.
	EventOrderTaken EventKind = "order_taken"
	// EventDriverLocation streams a driver position to the order's watchers.
	EventDriverLocation EventKind = "driver_location"
)

// Event is one message pushed through the hub. Payload must be
// JSON-serializable; handlers build it from committed state only.
type Event struct {
	Kind      EventKind      `json:"kind"`
	TenantID  string         `json:"tenantId"`
	OrderID   string         `json:"orderId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	target Target
}

// Critical reports whether the event must not be silently dropped on queue
// overflow. Losing a status change or an offer desynchronizes the client;
// losing one location ping does not, the next ping supersedes it.
func (e Event) Critical() bool {
	return e.Kind != EventDriverLocation
}

// Target returns the delivery selector of the event.
func (e Event) Target() Target {
	return e.target
}

// WithTarget returns a copy of the event routed by target.
func (e Event) WithTarget(target Target) Event {
	e.target = target
	return e
}

// Target selects which connections receive an event. The zero value matches
// nothing; build targets with the constructors below.
type Target struct {
	tenantID  string
	roles     map[order.ActorRole]struct{}
	principal string
}

// TargetRoles matches every connection of the tenant whose role is in roles.
func TargetRoles(tenantID kernel.UUID, roles ...order.ActorRole) Target {
	set := make(map[order.ActorRole]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Target{tenantID: tenantID.String(), roles: set}
}

// TargetPrincipal matches the single principal (driver or customer) of the
// tenant, across all of its connections.
func TargetPrincipal(tenantID kernel.UUID, role order.ActorRole, principalID kernel.UUID) Target {
	return Target{
		tenantID:  tenantID.String(),
		roles:     map[order.ActorRole]struct{}{role: {}},
		principal: principalID.String(),
	}
}

// Matches reports whether a connection registered with the given identity
// should receive events routed by t.
func (t Target) Matches(tenantID string, role order.ActorRole, principalID string) bool {
	if t.tenantID == "" || t.tenantID != tenantID {
		return false
	}
	if _, ok := t.roles[role]; !ok {
		return false
	}
	if t.principal != "" && t.principal != principalID {
		return false
	}
	return true
}
