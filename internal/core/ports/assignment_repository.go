package ports

import (
	"context"

	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for driver
// assignments. The at-most-one-winner guarantee of the dispatch race rests on
// CreateIfAbsent, which must be atomic at the storage level.
type AssignmentRepository interface {
	// CreateIfAbsent persists the assignment only if no active assignment
	// exists for its order. It reports created=false, without error, when
	// another driver already holds the order. Implementations must make the
	// check-and-insert atomic so concurrent accepts cannot both win.
	CreateIfAbsent(ctx context.Context, assignment *dispatch.Assignment) (created bool, err error)

	// Update persists changes to an existing assignment.
	Update(ctx context.Context, assignment *dispatch.Assignment) error

	// GetActiveByOrder retrieves the active assignment for an order, or nil
	// if the order is unassigned.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*dispatch.Assignment, error)

	// GetActiveByDriver retrieves all orders a driver currently holds.
	GetActiveByDriver(ctx context.Context, driverID kernel.UUID) ([]*dispatch.Assignment, error)
}
