package order

import (
	"errors"
	"fmt"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when using an improperly initialized Item.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem")

// Item is one line of an order: a product, a quantity and the unit price at
// the time of ordering. Immutable value object.
type Item struct { //nolint:recvcheck //using for validation
	productID kernel.UUID
	name      string
	quantity  int
	unitPrice kernel.Money

	guard guard.ConstructorGuard
}

// NewItem creates an order line item.
func NewItem(productID kernel.UUID, name string, quantity int, unitPrice kernel.Money) (Item, error) {
	item := Item{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setProductID(productID),
		item.setName(name),
		item.setQuantity(quantity),
	); err != nil {
		return Item{}, err
	}

	item.unitPrice = unitPrice
	return item, nil
}

// ProductID returns the catalog identifier of the product.
func (i Item) ProductID() kernel.UUID { return i.productID }

// Name returns the product name as displayed on tickets and receipts.
func (i Item) Name() string { return i.name }

// Quantity returns how many units were ordered.
func (i Item) Quantity() int { return i.quantity }

// UnitPrice returns the price of one unit at ordering time.
func (i Item) UnitPrice() kernel.Money { return i.unitPrice }

// LineTotal returns unitPrice * quantity.
func (i Item) LineTotal() kernel.Money {
	total := kernel.Money{}
	for n := 0; n < i.quantity; n++ {
		total = total.Add(i.unitPrice)
	}
	return total
}

// Validate ensures the item was created through NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i *Item) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	i.productID = productID
	return nil
}

func (i *Item) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	i.name = name
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not a positive quantity", quantity))
	}
	i.quantity = quantity
	return nil
}
