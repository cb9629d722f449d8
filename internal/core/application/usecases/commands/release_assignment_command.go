package commands

import (
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/guard"
)

var (
	ErrReleaseAssignmentCommandIsNotConstructed = errors.New(
		"ReleaseAssignmentCommand must be created via NewReleaseAssignmentCommand constructor",
	)
	// ErrAssignmentNotHeld is returned when the releasing driver does not hold
	// the order.
	ErrAssignmentNotHeld = errors.New("driver does not hold this order")
)

// ReleaseAssignmentCommand represents a driver handing an accepted order back
// before pickup, returning it to the dispatch pool.
type ReleaseAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewReleaseAssignmentCommand creates a release command.
func NewReleaseAssignmentCommand(orderID, driverID kernel.UUID) (ReleaseAssignmentCommand, error) {
	cmd := ReleaseAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDriverID(driverID),
	); err != nil {
		return ReleaseAssignmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReleaseAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrReleaseAssignmentCommandIsNotConstructed)
}

// OrderID returns the order being released.
func (c ReleaseAssignmentCommand) OrderID() kernel.UUID { return c.orderID }

// DriverID returns the releasing driver.
func (c ReleaseAssignmentCommand) DriverID() kernel.UUID { return c.driverID }

func (c *ReleaseAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ReleaseAssignmentCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	c.driverID = driverID
	return nil
}
