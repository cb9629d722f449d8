package order

import (
	"fmt"

	"foodcourt/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	pending ──> confirmed ──> preparing ──> ready ──> out_for_delivery ──> delivered
//	                                          │                              ▲
//	                                          └──────── (pickup orders) ─────┘
//
// cancelled is reachable from every non-terminal state. delivered and
// cancelled are terminal: no further transitions are allowed.
//
// Status only moves forward; there is no edge back to an earlier state, so
// an order's status history is always non-decreasing along the table above.
type Status string

const (
	// StatusPending is the initial status of every order, internal or ingested.
	StatusPending Status = "pending"
	// StatusConfirmed means the restaurant has accepted the order.
	StatusConfirmed Status = "confirmed"
	// StatusPreparing means the kitchen has started working on the order.
	StatusPreparing Status = "preparing"
	// StatusReady means the order can be picked up, by a driver or the customer.
	StatusReady Status = "ready"
	// StatusOutForDelivery means a driver has the order and is en route.
	StatusOutForDelivery Status = "out_for_delivery"
	// StatusDelivered is the terminal success state.
	StatusDelivered Status = "delivered"
	// StatusCancelled is the terminal failure state.
	StatusCancelled Status = "cancelled"
)

// ActorRole identifies which kind of actor requests a transition.
// Authorization is enforced per edge: the same target status may be
// reachable for one role and forbidden for another.
type ActorRole string

const (
	// RoleCustomer is the person who placed the order.
	RoleCustomer ActorRole = "customer"
	// RoleRestaurant is the tenant owner or manager dashboard.
	RoleRestaurant ActorRole = "restaurant"
	// RoleKitchen is kitchen staff working the preparation queue.
	RoleKitchen ActorRole = "kitchen"
	// RoleDriver is a delivery driver.
	RoleDriver ActorRole = "driver"
	// RoleSystem is used for machine-initiated changes such as webhook ingestion.
	RoleSystem ActorRole = "system"
)

// successors is the forward transition table. cancelled is intentionally
// absent: cancellation is handled as a separate edge from any non-terminal
// state with its own authorization rules.
var successors = map[Status][]Status{
	StatusPending:        {StatusConfirmed},
	StatusConfirmed:      {StatusPreparing},
	StatusPreparing:      {StatusReady},
	StatusReady:          {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
}

type edge struct {
	from Status
	to   Status
}

// edgeRoles lists which roles may perform each forward edge.
// The ready->delivered edge is the pickup handover and belongs to the
// restaurant counter, not to drivers.
var edgeRoles = map[edge][]ActorRole{
	{StatusPending, StatusConfirmed}:        {RoleRestaurant},
	{StatusConfirmed, StatusPreparing}:      {RoleRestaurant, RoleKitchen},
	{StatusPreparing, StatusReady}:          {RoleRestaurant, RoleKitchen},
	{StatusReady, StatusOutForDelivery}:     {RoleDriver, RoleRestaurant},
	{StatusReady, StatusDelivered}:          {RoleRestaurant},
	{StatusOutForDelivery, StatusDelivered}: {RoleDriver, RoleRestaurant},
}

// cancelRoles lists which roles may cancel at all. Whether a particular
// cancellation is allowed additionally depends on the current status; see
// Order.TransitionTo.
var cancelRoles = []ActorRole{RoleCustomer, RoleRestaurant}

func validStatuses() map[Status]struct{} {
	return map[Status]struct{}{
		StatusPending:        {},
		StatusConfirmed:      {},
		StatusPreparing:      {},
		StatusReady:          {},
		StatusOutForDelivery: {},
		StatusDelivered:      {},
		StatusCancelled:      {},
	}
}

// Validate checks that the status is one of the defined lifecycle states.
// Used when statuses arrive from persistence or external callers.
func (s Status) Validate() error {
	if _, ok := validStatuses()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%q is not a valid order status", string(s)))
	}
	return nil
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether target is a direct successor of s in the
// forward transition table. Cancellation is not covered here.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range successors[s] {
		if next == target {
			return true
		}
	}
	return false
}

// RoleMayTransition reports whether role is authorized for the s->target edge.
func (s Status) RoleMayTransition(target Status, role ActorRole) bool {
	for _, r := range edgeRoles[edge{s, target}] {
		if r == role {
			return true
		}
	}
	return false
}

// RoleMayCancel reports whether role may cancel an order currently in s.
// Customers may only cancel before preparation has started; the restaurant
// may cancel any non-terminal order.
func (s Status) RoleMayCancel(role ActorRole) bool {
	permitted := false
	for _, r := range cancelRoles {
		if r == role {
			permitted = true
			break
		}
	}
	if !permitted {
		return false
	}
	if role == RoleCustomer {
		return s == StatusPending || s == StatusConfirmed
	}
	return true
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
