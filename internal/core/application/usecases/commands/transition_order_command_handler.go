package commands

import (
	"context"
	"time"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/realtime"
)

// TransitionOrderCommandHandler handles order lifecycle transitions. The
// aggregate enforces the state machine and role authorization; this handler
// adds per-order serialization, assignment bookkeeping on terminal statuses,
// and publishes the status change only after the transaction commits. When a
// delivery order becomes ready it is additionally offered to the tenant's
// online drivers.
type TransitionOrderCommandHandler struct {
	uowFactory DispatchUoWFactory
	locks      *OrderLocks
	tracker    *presence.Tracker
	publisher  ports.EventPublisher
}

// NewTransitionOrderCommandHandler creates a handler for status transitions.
func NewTransitionOrderCommandHandler(
	uowFactory DispatchUoWFactory,
	locks *OrderLocks,
	tracker *presence.Tracker,
	publisher ports.EventPublisher,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		tracker:    tracker,
		publisher:  publisher,
	}
}

// Handle processes a status transition. Concurrent transitions for the same
// order are serialized, so of two racing requests one wins and the other is
// re-evaluated against the already-updated status.
func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) error {
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

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.TransitionTo(cmd.Target(), cmd.Role(), time.Now()); err != nil {
		return err
	}

	if err = h.settleAssignment(ctx, uow, aggregate); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publishStatusChanged(aggregate, cmd)
	if aggregate.Status() == order.StatusReady && aggregate.DeliveryType() == order.DeliveryTypeDelivery {
		publishOrderOffers(ctx, h.tracker, h.publisher, aggregate)
	}
	return nil
}

// settleAssignment closes the active driver assignment when the order reaches
// a terminal status: completed on delivery, revoked on cancellation.
func (h *TransitionOrderCommandHandler) settleAssignment(
	ctx context.Context, uow DispatchUoW, aggregate *order.Order,
) error {
	if !aggregate.Status().IsTerminal() || aggregate.Driver() == nil {
		return nil
	}

	assignment, err := uow.AssignmentRepository().GetActiveByOrder(ctx, aggregate.ID())
	if err != nil {
		return err
	}
	if assignment == nil {
		return nil
	}

	if aggregate.Status() == order.StatusDelivered {
		err = assignment.Complete()
	} else {
		err = assignment.Revoke()
	}
	if err != nil {
		return err
	}

	return uow.AssignmentRepository().Update(ctx, assignment)
}

func (h *TransitionOrderCommandHandler) publishStatusChanged(
	aggregate *order.Order, cmd TransitionOrderCommand,
) {
	event := realtime.Event{
		Kind:     realtime.EventOrderStatusChanged,
		TenantID: aggregate.TenantID().String(),
		OrderID:  aggregate.ID().String(),
		Payload: map[string]any{
			"status": string(aggregate.Status()),
			"actor":  string(cmd.Role()),
		},
		Timestamp: time.Now(),
	}

	h.publisher.Publish(event.WithTarget(realtime.TargetRoles(
		aggregate.TenantID(), order.RoleRestaurant, order.RoleKitchen)))
	h.publisher.Publish(event.WithTarget(realtime.TargetPrincipal(
		aggregate.TenantID(), order.RoleCustomer, aggregate.Customer().ID())))
	if driverID := aggregate.Driver(); driverID != nil {
		h.publisher.Publish(event.WithTarget(realtime.TargetPrincipal(
			aggregate.TenantID(), order.RoleDriver, *driverID)))
	}
}
