package commands

import (
	"context"
	"time"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/realtime"
)

// RecordLocationCommandHandler stores driver location pings in the presence
// tracker and streams them to the tenant dashboard. When the driver holds an
// active assignment the ping is also forwarded to that order's customer, so
// the tracking screen moves without polling. Location events are droppable: a
// lost one is superseded by the next ping, so nothing durable is written here.
type RecordLocationCommandHandler struct {
	tracker    *presence.Tracker
	uowFactory DispatchUoWFactory
	publisher  ports.EventPublisher
}

// NewRecordLocationCommandHandler creates a handler for location pings.
func NewRecordLocationCommandHandler(
	tracker *presence.Tracker,
	uowFactory DispatchUoWFactory,
	publisher ports.EventPublisher,
) RecordLocationCommandHandler {
	return RecordLocationCommandHandler{
		tracker:    tracker,
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes one location ping. Stale pings (older than the stored one)
// are dropped silently: out-of-order delivery is normal on flaky mobile
// connections and must not rewind a driver's position.
func (h *RecordLocationCommandHandler) Handle(ctx context.Context, cmd RecordLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	updated, err := h.tracker.Record(ctx, cmd.TenantID(), cmd.DriverID(), cmd.Location(), cmd.RecordedAt())
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	event := realtime.Event{
		Kind:     realtime.EventDriverLocation,
		TenantID: cmd.TenantID().String(),
		Payload: map[string]any{
			"driverId":   cmd.DriverID().String(),
			"lat":        cmd.Location().Lat(),
			"lon":        cmd.Location().Lon(),
			"recordedAt": cmd.RecordedAt().Format(time.RFC3339),
		},
		Timestamp: time.Now(),
	}

	h.publisher.Publish(event.WithTarget(realtime.TargetRoles(cmd.TenantID(), order.RoleRestaurant)))

	return h.forwardToWatchers(ctx, cmd, event)
}

// forwardToWatchers pushes the ping to the customer of every order the driver
// currently holds, scoped to the ping's tenant. The customer is targeted as a
// principal: other customers of the tenant never see the driver move.
func (h *RecordLocationCommandHandler) forwardToWatchers(
	ctx context.Context, cmd RecordLocationCommand, event realtime.Event,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignments, err := uow.AssignmentRepository().GetActiveByDriver(ctx, cmd.DriverID())
	if err != nil {
		return err
	}

	for _, assignment := range assignments {
		if !assignment.TenantID().IsEqual(cmd.TenantID()) {
			continue
		}

		aggregate, err := uow.OrderRepository().Get(ctx, assignment.OrderID())
		if err != nil {
			return err
		}

		forwarded := event
		forwarded.OrderID = aggregate.ID().String()
		h.publisher.Publish(forwarded.WithTarget(realtime.TargetPrincipal(
			aggregate.TenantID(), order.RoleCustomer, aggregate.Customer().ID())))
	}

	return nil
}
