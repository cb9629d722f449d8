package commands

import (
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsRequired = errors.New("at least one item is required")
)

// CreateOrderCommand represents a request to create a new storefront order.
// The order starts in pending status; the delivery fee is computed by the
// handler from the restaurant-to-customer distance.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID            kernel.UUID
	tenantID           kernel.UUID
	customer           order.Customer
	items              []order.Item
	deliveryType       order.DeliveryType
	paymentMethod      order.PaymentMethod
	restaurantLocation kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	tenantID kernel.UUID,
	customer order.Customer,
	items []order.Item,
	deliveryType order.DeliveryType,
	paymentMethod order.PaymentMethod,
	restaurantLocation kernel.GeoPoint,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTenantID(tenantID),
		cmd.setCustomer(customer),
		cmd.setItems(items),
		cmd.setDeliveryType(deliveryType),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setRestaurantLocation(restaurantLocation),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to create.
func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }

// TenantID returns the restaurant receiving the order.
func (c CreateOrderCommand) TenantID() kernel.UUID { return c.tenantID }

// Customer returns the ordering customer.
func (c CreateOrderCommand) Customer() order.Customer { return c.customer }

// Items returns the ordered line items.
func (c CreateOrderCommand) Items() []order.Item { return append([]order.Item(nil), c.items...) }

// DeliveryType returns whether the order is delivered or picked up.
func (c CreateOrderCommand) DeliveryType() order.DeliveryType { return c.deliveryType }

// PaymentMethod returns how the order is paid.
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod { return c.paymentMethod }

// RestaurantLocation returns the tenant's pickup point used for fee math.
func (c CreateOrderCommand) RestaurantLocation() kernel.GeoPoint { return c.restaurantLocation }

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	c.tenantID = tenantID
	return nil
}

func (c *CreateOrderCommand) setCustomer(customer order.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return ErrItemsRequired
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	c.items = append([]order.Item(nil), items...)
	return nil
}

func (c *CreateOrderCommand) setDeliveryType(deliveryType order.DeliveryType) error {
	if err := deliveryType.Validate(); err != nil {
		return err
	}
	c.deliveryType = deliveryType
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(paymentMethod order.PaymentMethod) error {
	if err := paymentMethod.Validate(); err != nil {
		return err
	}
	c.paymentMethod = paymentMethod
	return nil
}

func (c *CreateOrderCommand) setRestaurantLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.restaurantLocation = location
	return nil
}
