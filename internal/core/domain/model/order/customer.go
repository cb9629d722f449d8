package order

import (
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/pkg/guard"
)

// ErrCustomerIsNotConstructed is returned when using an improperly initialized Customer.
var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer")

// Customer is the recipient of an order: contact details plus the delivery
// destination. For pickup orders the location is still recorded for fee-free
// distance display but no driver ever routes to it.
type Customer struct { //nolint:recvcheck //using for validation
	id       kernel.UUID
	name     string
	phone    string
	address  string
	location kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCustomer creates the customer value object of an order.
func NewCustomer(
	id kernel.UUID, name, phone, address string, location kernel.GeoPoint,
) (Customer, error) {
	customer := Customer{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		customer.setID(id),
		customer.setName(name),
		customer.setPhone(phone),
		customer.setAddress(address),
		customer.setLocation(location),
	); err != nil {
		return Customer{}, err
	}

	return customer, nil
}

// ID returns the customer identifier.
func (c Customer) ID() kernel.UUID { return c.id }

// Name returns the customer's display name.
func (c Customer) Name() string { return c.name }

// Phone returns the contact phone number.
func (c Customer) Phone() string { return c.phone }

// Address returns the human-readable delivery address.
func (c Customer) Address() string { return c.address }

// Location returns the delivery destination coordinates.
func (c Customer) Location() kernel.GeoPoint { return c.location }

// Validate ensures the customer was created through NewCustomer.
func (c Customer) Validate() error {
	return c.guard.Validate(ErrCustomerIsNotConstructed)
}

func (c *Customer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Customer) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}

func (c *Customer) setPhone(phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	c.phone = phone
	return nil
}

func (c *Customer) setAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	c.address = address
	return nil
}

func (c *Customer) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}
