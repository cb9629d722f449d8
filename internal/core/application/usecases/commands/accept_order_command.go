package commands

import (
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/guard"
)

var (
	ErrAcceptOrderCommandIsNotConstructed = errors.New(
		"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
	)
	// ErrOrderAlreadyAssigned is returned to every driver who loses the accept
	// race. It is an expected outcome, not a failure: handlers map it to a
	// conflict response and the losing client shows "order taken".
	ErrOrderAlreadyAssigned = errors.New("order is already assigned to another driver")
	ErrOrderNotReady        = errors.New("order is not ready for dispatch")
)

// AcceptOrderCommand represents a driver accepting an offered order. Many
// drivers may issue this command for the same order concurrently; exactly one
// wins.
type AcceptOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOrderCommand creates an accept command.
func NewAcceptOrderCommand(orderID, driverID kernel.UUID) (AcceptOrderCommand, error) {
	cmd := AcceptOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDriverID(driverID),
	); err != nil {
		return AcceptOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

// OrderID returns the order being accepted.
func (c AcceptOrderCommand) OrderID() kernel.UUID { return c.orderID }

// DriverID returns the accepting driver.
func (c AcceptOrderCommand) DriverID() kernel.UUID { return c.driverID }

func (c *AcceptOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *AcceptOrderCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	c.driverID = driverID
	return nil
}
