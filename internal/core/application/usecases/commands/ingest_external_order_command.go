package commands

import (
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/pkg/guard"
)

var ErrIngestExternalOrderCommandIsNotConstructed = errors.New(
	"IngestExternalOrderCommand must be created via NewIngestExternalOrderCommand constructor",
)

// IngestExternalOrderCommand represents a normalized order pushed by an
// external platform webhook. The normalizers in the ingestion package map
// platform payloads into this command; whatever they could not map rides
// along untouched in rawMetadata.
type IngestExternalOrderCommand struct { //nolint:recvcheck //using for validation
	tenantID       kernel.UUID
	externalRef    order.ExternalRef
	customer       order.Customer
	items          []order.Item
	deliveryFee    kernel.Money
	deliveryType   order.DeliveryType
	paymentMethod  order.PaymentMethod
	paymentSettled bool
	rawMetadata    []byte

	guard guard.ConstructorGuard
}

// NewIngestExternalOrderCommand creates an ingestion command.
func NewIngestExternalOrderCommand(
	tenantID kernel.UUID,
	externalRef order.ExternalRef,
	customer order.Customer,
	items []order.Item,
	deliveryFee kernel.Money,
	deliveryType order.DeliveryType,
	paymentMethod order.PaymentMethod,
	paymentSettled bool,
	rawMetadata []byte,
) (IngestExternalOrderCommand, error) {
	cmd := IngestExternalOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTenantID(tenantID),
		cmd.setExternalRef(externalRef),
		cmd.setCustomer(customer),
		cmd.setItems(items),
		cmd.setDeliveryType(deliveryType),
		cmd.setPaymentMethod(paymentMethod),
	); err != nil {
		return IngestExternalOrderCommand{}, err
	}

	cmd.deliveryFee = deliveryFee
	cmd.paymentSettled = paymentSettled
	cmd.rawMetadata = append([]byte(nil), rawMetadata...)
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestExternalOrderCommand) Validate() error {
	return c.guard.Validate(ErrIngestExternalOrderCommandIsNotConstructed)
}

// TenantID returns the restaurant receiving the order.
func (c IngestExternalOrderCommand) TenantID() kernel.UUID { return c.tenantID }

// ExternalRef returns the originating platform reference.
func (c IngestExternalOrderCommand) ExternalRef() order.ExternalRef { return c.externalRef }

// Customer returns the ordering customer.
func (c IngestExternalOrderCommand) Customer() order.Customer { return c.customer }

// Items returns the ordered line items.
func (c IngestExternalOrderCommand) Items() []order.Item {
	return append([]order.Item(nil), c.items...)
}

// DeliveryFee returns the platform-reported delivery fee.
func (c IngestExternalOrderCommand) DeliveryFee() kernel.Money { return c.deliveryFee }

// DeliveryType returns whether the order is delivered or picked up.
func (c IngestExternalOrderCommand) DeliveryType() order.DeliveryType { return c.deliveryType }

// PaymentMethod returns how the order is paid.
func (c IngestExternalOrderCommand) PaymentMethod() order.PaymentMethod { return c.paymentMethod }

// PaymentSettled reports whether the platform already captured the payment.
func (c IngestExternalOrderCommand) PaymentSettled() bool { return c.paymentSettled }

// RawMetadata returns the unmapped remainder of the platform payload.
func (c IngestExternalOrderCommand) RawMetadata() []byte {
	return append([]byte(nil), c.rawMetadata...)
}

func (c *IngestExternalOrderCommand) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	c.tenantID = tenantID
	return nil
}

func (c *IngestExternalOrderCommand) setExternalRef(ref order.ExternalRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	c.externalRef = ref
	return nil
}

func (c *IngestExternalOrderCommand) setCustomer(customer order.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	c.customer = customer
	return nil
}

func (c *IngestExternalOrderCommand) setItems(items []order.Item) error {
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

func (c *IngestExternalOrderCommand) setDeliveryType(deliveryType order.DeliveryType) error {
	if err := deliveryType.Validate(); err != nil {
		return err
	}
	c.deliveryType = deliveryType
	return nil
}

func (c *IngestExternalOrderCommand) setPaymentMethod(paymentMethod order.PaymentMethod) error {
	if err := paymentMethod.Validate(); err != nil {
		return err
	}
	c.paymentMethod = paymentMethod
	return nil
}
