package commands

import (
	"context"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/ports"
)

// ReleaseAssignmentCommandHandler returns an accepted order to the dispatch
// pool: the assignment is revoked, the order's driver reference cleared, and
// the order re-offered to the tenant's online drivers. The order status does
// not move; release is only possible before pickup.
type ReleaseAssignmentCommandHandler struct {
	uowFactory DispatchUoWFactory
	locks      *OrderLocks
	tracker    *presence.Tracker
	publisher  ports.EventPublisher
}

// NewReleaseAssignmentCommandHandler creates a handler for driver releases.
func NewReleaseAssignmentCommandHandler(
	uowFactory DispatchUoWFactory,
	locks *OrderLocks,
	tracker *presence.Tracker,
	publisher ports.EventPublisher,
) ReleaseAssignmentCommandHandler {
	return ReleaseAssignmentCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		tracker:    tracker,
		publisher:  publisher,
	}
}

// Handle processes a driver release.
func (h *ReleaseAssignmentCommandHandler) Handle(ctx context.Context, cmd ReleaseAssignmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	unlock := h.locks.Lock(cmd.OrderID())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignment, err := uow.AssignmentRepository().GetActiveByOrder(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if assignment == nil || !assignment.DriverID().IsEqual(cmd.DriverID()) {
		return ErrAssignmentNotHeld
	}

	if err = assignment.Revoke(); err != nil {
		return err
	}
	if err = uow.AssignmentRepository().Update(ctx, assignment); err != nil {
		return err
	}

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if err = aggregate.ReleaseDriver(); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishOrderOffers(ctx, h.tracker, h.publisher, aggregate)
	return nil
}
