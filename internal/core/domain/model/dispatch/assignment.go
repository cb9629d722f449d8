package dispatch

import (
	"errors"
	"fmt"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/pkg/guard"
)

// Assignment errors.
var (
	// ErrAssignmentIsNotConstructed is returned when an Assignment was not
	// created through NewAssignment or RestoreAssignment.
	ErrAssignmentIsNotConstructed = errors.New(
		"Assignment must be created via NewAssignment or RestoreAssignment")
	// ErrAssignmentIsNotActive is returned when revoking or completing an
	// assignment that is no longer active.
	ErrAssignmentIsNotActive = errors.New("assignment is not active")
)

// AssignmentStatus is the lifecycle state of a driver assignment.
type AssignmentStatus string

const (
	// AssignmentStatusActive means the driver currently holds the order.
	AssignmentStatusActive AssignmentStatus = "active"
	// AssignmentStatusRevoked means the driver released the order (or dispatch
	// revoked it) before pickup; the order can be re-offered.
	AssignmentStatusRevoked AssignmentStatus = "revoked"
	// AssignmentStatusCompleted means the delivery finished.
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// Validate checks the status against the known set.
func (s AssignmentStatus) Validate() error {
	if s != AssignmentStatusActive && s != AssignmentStatusRevoked && s != AssignmentStatusCompleted {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%q is not a valid assignment status", string(s)))
	}
	return nil
}

// Assignment records which driver holds which order. It is the durable
// outcome of the dispatch race: at most one active assignment exists per
// order, which the persistence layer enforces with a uniqueness constraint
// on the order ID.
type Assignment struct {
	id         kernel.UUID
	orderID    kernel.UUID
	driverID   kernel.UUID
	tenantID   kernel.UUID
	status     AssignmentStatus
	assignedAt time.Time

	guard guard.ConstructorGuard
}

// NewAssignment creates an active assignment for the given driver and order.
func NewAssignment(orderID, driverID, tenantID kernel.UUID, assignedAt time.Time) (*Assignment, error) {
	a := &Assignment{
		id:         kernel.NewUUID(),
		status:     AssignmentStatusActive,
		assignedAt: assignedAt,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setOrderID(orderID),
		a.setDriverID(driverID),
		a.setTenantID(tenantID),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAssignment reconstructs an assignment from persistence.
func RestoreAssignment(
	id, orderID, driverID, tenantID kernel.UUID,
	status AssignmentStatus,
	assignedAt time.Time,
) (*Assignment, error) {
	a, err := NewAssignment(orderID, driverID, tenantID, assignedAt)
	if err != nil {
		return nil, err
	}
	if err = id.Validate(); err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}
	a.id = id
	a.status = status
	return a, nil
}

// ID returns the assignment identifier.
func (a *Assignment) ID() kernel.UUID { return a.id }

// OrderID returns the assigned order.
func (a *Assignment) OrderID() kernel.UUID { return a.orderID }

// DriverID returns the driver holding the order.
func (a *Assignment) DriverID() kernel.UUID { return a.driverID }

// TenantID returns the restaurant the order belongs to.
func (a *Assignment) TenantID() kernel.UUID { return a.tenantID }

// Status returns the assignment lifecycle state.
func (a *Assignment) Status() AssignmentStatus { return a.status }

// AssignedAt returns when the driver won the order.
func (a *Assignment) AssignedAt() time.Time { return a.assignedAt }

// IsActive reports whether the driver still holds the order.
func (a *Assignment) IsActive() bool { return a.status == AssignmentStatusActive }

// Revoke releases the order back to the dispatch pool.
func (a *Assignment) Revoke() error {
	if !a.IsActive() {
		return ErrAssignmentIsNotActive
	}
	a.status = AssignmentStatusRevoked
	return nil
}

// Complete marks the delivery as finished.
func (a *Assignment) Complete() error {
	if !a.IsActive() {
		return ErrAssignmentIsNotActive
	}
	a.status = AssignmentStatusCompleted
	return nil
}

// IsEqual compares assignments by identifier.
func (a *Assignment) IsEqual(other *Assignment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// Validate ensures the assignment was created through a constructor.
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

func (a *Assignment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	a.orderID = orderID
	return nil
}

func (a *Assignment) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	a.driverID = driverID
	return nil
}

func (a *Assignment) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	a.tenantID = tenantID
	return nil
}
