package commands

import (
	"context"
	"time"

	"foodcourt/internal/core/domain/model/dispatch"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/realtime"
)

// AcceptOrderCommandHandler decides the dispatch race. The winner is chosen
// by an atomic check-and-insert on the assignment store, so even accepts
// arriving on different processes cannot both succeed. Losers get
// ErrOrderAlreadyAssigned.
type AcceptOrderCommandHandler struct {
	uowFactory DispatchUoWFactory
	locks      *OrderLocks
	publisher  ports.EventPublisher
}

// NewAcceptOrderCommandHandler creates a handler for driver accepts.
func NewAcceptOrderCommandHandler(
	uowFactory DispatchUoWFactory,
	locks *OrderLocks,
	publisher ports.EventPublisher,
) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		publisher:  publisher,
	}
}

// Handle processes a driver accept. On success the assignment and the order's
// driver reference commit in one transaction, then order_taken is broadcast
// so every other driver drops the offer from their list.
func (h *AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) error {
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

	if aggregate.Status() != order.StatusReady || aggregate.DeliveryType() != order.DeliveryTypeDelivery {
		return ErrOrderNotReady
	}
	if aggregate.Driver() != nil {
		return ErrOrderAlreadyAssigned
	}

	assignment, err := dispatch.NewAssignment(
		cmd.OrderID(), cmd.DriverID(), aggregate.TenantID(), time.Now())
	if err != nil {
		return err
	}

	created, err := uow.AssignmentRepository().CreateIfAbsent(ctx, assignment)
	if err != nil {
		return err
	}
	if !created {
		return ErrOrderAlreadyAssigned
	}

	if err = aggregate.AssignDriver(cmd.DriverID()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(realtime.Event{
		Kind:     realtime.EventOrderTaken,
		TenantID: aggregate.TenantID().String(),
		OrderID:  aggregate.ID().String(),
		Payload: map[string]any{
			"driverId": cmd.DriverID().String(),
		},
		Timestamp: time.Now(),
	}.WithTarget(realtime.TargetRoles(
		aggregate.TenantID(), order.RoleDriver, order.RoleRestaurant)))

	return nil
}
