package commands

import (
	"context"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/domain/services"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/realtime"
)

// CreateOrderCommandHandler handles the business logic for storefront order
// creation: fee calculation, persistence and announcing the new order to the
// tenant's dashboard and kitchen.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	feePolicy  services.FeePolicy
	publisher  ports.EventPublisher
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	feePolicy services.FeePolicy,
	publisher ports.EventPublisher,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		feePolicy:  feePolicy,
		publisher:  publisher,
	}
}

// Handle processes the order creation command. The delivery fee is derived
// from the restaurant-to-customer distance for delivery orders and is zero
// for pickup orders. The order_created event is published only after the
// transaction commits.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	fee := kernel.Money{}
	if cmd.DeliveryType() == order.DeliveryTypeDelivery {
		distance := services.DistanceKm(cmd.RestaurantLocation(), cmd.Customer().Location())
		fee = h.feePolicy.DeliveryFee(distance)
	}

	newOrder, err := order.NewOrder(
		cmd.OrderID(), cmd.TenantID(), cmd.Customer(), cmd.Items(),
		fee, cmd.DeliveryType(), cmd.PaymentMethod(), nil, nil,
		time.Now(), order.RoleCustomer)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publisher.Publish(realtime.Event{
		Kind:     realtime.EventOrderCreated,
		TenantID: cmd.TenantID().String(),
		OrderID:  newOrder.ID().String(),
		Payload: map[string]any{
			"status":       string(newOrder.Status()),
			"total":        newOrder.Total().Cents(),
			"deliveryType": string(newOrder.DeliveryType()),
		},
		Timestamp: time.Now(),
	}.WithTarget(realtime.TargetRoles(cmd.TenantID(), order.RoleRestaurant, order.RoleKitchen)))

	return nil
}
