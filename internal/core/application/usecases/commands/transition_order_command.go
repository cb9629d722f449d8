package commands

import (
	"errors"
	"fmt"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand represents a request to move an order to a new
// lifecycle status on behalf of an authenticated actor.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	role    order.ActorRole
	actorID kernel.UUID

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand creates a status transition command.
func NewTransitionOrderCommand(
	orderID kernel.UUID,
	target order.Status,
	role order.ActorRole,
	actorID kernel.UUID,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setRole(role),
		cmd.setActorID(actorID),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }

// Target returns the requested status.
func (c TransitionOrderCommand) Target() order.Status { return c.target }

// Role returns the acting role.
func (c TransitionOrderCommand) Role() order.ActorRole { return c.role }

// ActorID returns the acting principal's identifier.
func (c TransitionOrderCommand) ActorID() kernel.UUID { return c.actorID }

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *TransitionOrderCommand) setRole(role order.ActorRole) error {
	switch role {
	case order.RoleCustomer, order.RoleRestaurant, order.RoleKitchen, order.RoleDriver, order.RoleSystem:
		c.role = role
		return nil
	default:
		return fmt.Errorf("%q is not a valid actor role", string(role))
	}
}

func (c *TransitionOrderCommand) setActorID(actorID kernel.UUID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}
	c.actorID = actorID
	return nil
}
