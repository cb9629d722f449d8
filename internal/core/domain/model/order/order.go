package order

import (
	"errors"
	"fmt"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/pkg/guard"
)

// Domain errors for order lifecycle operations. All transition failures
// leave the order unmodified.
var (
	// ErrOrderIsNotConstructed is returned when an Order was not created
	// through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
	// ErrInvalidTransition is returned when the target status is not a direct
	// successor of the current status.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrUnauthorizedRole is returned when the acting role may not perform the
	// requested edge, including late customer cancellations.
	ErrUnauthorizedRole = errors.New("actor role is not authorized for this transition")
	// ErrAlreadyTerminal is returned when the order is delivered or cancelled.
	ErrAlreadyTerminal = errors.New("order is in a terminal status")
	// ErrNoDriverAssigned is returned when moving to out_for_delivery without
	// a driver assignment.
	ErrNoDriverAssigned = errors.New("no driver assigned to order")
	// ErrPaymentNotSettled is returned when confirming a card order whose
	// payment has not been captured yet.
	ErrPaymentNotSettled = errors.New("payment must be settled before confirming")
	// ErrDriverAlreadySet is returned when assigning a driver to an order that
	// already has one.
	ErrDriverAlreadySet = errors.New("order already has an assigned driver")
	// ErrDriverNotAssignable is returned when assigning or releasing a driver
	// in a status that does not allow it.
	ErrDriverNotAssignable = errors.New("order status does not allow driver assignment changes")
	// ErrItemsAreRequired is returned when creating an order with no items.
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// DeliveryType distinguishes courier delivery from customer pickup.
type DeliveryType string

const (
	// DeliveryTypeDelivery means a driver brings the order to the customer.
	DeliveryTypeDelivery DeliveryType = "delivery"
	// DeliveryTypePickup means the customer collects the order at the counter.
	DeliveryTypePickup DeliveryType = "pickup"
)

// Validate checks the delivery type against the known set.
func (d DeliveryType) Validate() error {
	if d != DeliveryTypeDelivery && d != DeliveryTypePickup {
		return errs.NewValueIsInvalidErrorWithCause(
			"deliveryType", fmt.Errorf("%q is not a valid delivery type", string(d)))
	}
	return nil
}

// PaymentMethod is how the customer pays for the order.
type PaymentMethod string

const (
	// PaymentMethodCard is an online card payment captured by the payment processor.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodCash is paid on handover.
	PaymentMethodCash PaymentMethod = "cash"
	// PaymentMethodPix is an instant bank transfer paid on handover confirmation.
	PaymentMethodPix PaymentMethod = "pix"
)

// Validate checks the payment method against the known set.
func (p PaymentMethod) Validate() error {
	if p != PaymentMethodCard && p != PaymentMethodCash && p != PaymentMethodPix {
		return errs.NewValueIsInvalidErrorWithCause(
			"paymentMethod", fmt.Errorf("%q is not a valid payment method", string(p)))
	}
	return nil
}

// RequiresPrepayment reports whether the method must be settled by the payment
// processor before the restaurant may confirm the order.
func (p PaymentMethod) RequiresPrepayment() bool {
	return p == PaymentMethodCard
}

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	// Status the order moved to.
	Status Status
	// At is when the transition happened.
	At time.Time
	// Actor is the role that performed the transition.
	Actor ActorRole
}

// Order is the canonical order aggregate, independent of which channel
// created it. It is the single authority on status transitions: every
// mutation goes through a validated method and failed operations never
// partially mutate state.
type Order struct {
	id            kernel.UUID
	tenantID      kernel.UUID
	externalRef   *ExternalRef
	rawMetadata   []byte
	items         []Item
	subtotal      kernel.Money
	deliveryFee   kernel.Money
	total         kernel.Money
	deliveryType  DeliveryType
	paymentMethod PaymentMethod
	paymentPaid   bool
	customer      Customer
	driverID      *kernel.UUID
	status        Status
	history       []StatusChange
	version       int
	createdAt     time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates an order in pending status. externalRef is nil for
// storefront orders and set for orders arriving through webhook ingestion;
// both channels share this single creation path so every order obeys the
// same transition rules.
//
// The subtotal is computed from the items and the total is always
// subtotal + deliveryFee, so the invariant cannot be violated at creation.
func NewOrder(
	id kernel.UUID,
	tenantID kernel.UUID,
	customer Customer,
	items []Item,
	deliveryFee kernel.Money,
	deliveryType DeliveryType,
	paymentMethod PaymentMethod,
	externalRef *ExternalRef,
	rawMetadata []byte,
	createdAt time.Time,
	actor ActorRole,
) (*Order, error) {
	o := &Order{
		status: StatusPending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setTenantID(tenantID),
		o.setCustomer(customer),
		o.setItems(items),
		o.setDeliveryType(deliveryType),
		o.setPaymentMethod(paymentMethod),
		o.setExternalRef(externalRef, rawMetadata),
	); err != nil {
		return nil, err
	}

	o.deliveryFee = deliveryFee
	o.subtotal = sumItems(items)
	o.total = o.subtotal.Add(deliveryFee)
	o.createdAt = createdAt
	o.history = []StatusChange{{Status: StatusPending, At: createdAt, Actor: actor}}
	o.version = 1

	return o, nil
}

// RestoreOrder reconstructs an order from persistence without replaying its
// transitions. The stored status, history and driver assignment are trusted
// as-is after basic consistency checks.
func RestoreOrder(
	id kernel.UUID,
	tenantID kernel.UUID,
	customer Customer,
	items []Item,
	deliveryFee kernel.Money,
	deliveryType DeliveryType,
	paymentMethod PaymentMethod,
	paymentPaid bool,
	externalRef *ExternalRef,
	rawMetadata []byte,
	driverID *kernel.UUID,
	status Status,
	history []StatusChange,
	version int,
	createdAt time.Time,
) (*Order, error) {
	o, err := NewOrder(id, tenantID, customer, items, deliveryFee, deliveryType,
		paymentMethod, externalRef, rawMetadata, createdAt, RoleSystem)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, errs.NewValueIsOutOfRangeError("version", version, 1, nil)
	}
	if driverID != nil {
		if err = driverID.Validate(); err != nil {
			return nil, err
		}
	}

	o.status = status
	o.paymentPaid = paymentPaid
	o.driverID = driverID
	o.version = version
	if len(history) > 0 {
		o.history = append([]StatusChange(nil), history...)
	}
	return o, nil
}

// Validate ensures the order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// TenantID returns the restaurant/store the order belongs to.
func (o *Order) TenantID() kernel.UUID { return o.tenantID }

// ExternalRef returns the originating platform reference, or nil for
// storefront orders.
func (o *Order) ExternalRef() *ExternalRef { return o.externalRef }

// RawMetadata returns the unmapped remainder of the originating platform
// payload. It is kept for audit and never interpreted.
func (o *Order) RawMetadata() []byte { return o.rawMetadata }

// Items returns the ordered line items.
func (o *Order) Items() []Item { return append([]Item(nil), o.items...) }

// Subtotal returns the sum of all line totals.
func (o *Order) Subtotal() kernel.Money { return o.subtotal }

// DeliveryFee returns the delivery fee charged for the order.
func (o *Order) DeliveryFee() kernel.Money { return o.deliveryFee }

// Total returns subtotal + deliveryFee.
func (o *Order) Total() kernel.Money { return o.total }

// DeliveryType returns whether the order is delivered or picked up.
func (o *Order) DeliveryType() DeliveryType { return o.deliveryType }

// PaymentMethod returns how the order is paid.
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }

// PaymentSettled reports whether the payment processor confirmed capture.
func (o *Order) PaymentSettled() bool { return o.paymentPaid }

// Customer returns the customer details.
func (o *Order) Customer() Customer { return o.customer }

// Driver returns the assigned driver's ID, or nil.
func (o *Order) Driver() *kernel.UUID { return o.driverID }

// Status returns the current lifecycle status.
func (o *Order) Status() Status { return o.status }

// History returns the append-only status history, oldest first.
func (o *Order) History() []StatusChange { return append([]StatusChange(nil), o.history...) }

// Version is the optimistic concurrency token the aggregate was loaded with.
// It never changes in memory: the repository bumps the stored value on every
// successful update and rejects writes whose token is no longer current.
func (o *Order) Version() int { return o.version }

// CreatedAt returns when the order was created.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// IsEqual compares orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// MarkPaid records that the payment processor settled the order's payment.
func (o *Order) MarkPaid() {
	o.paymentPaid = true
}

// TransitionTo moves the order to target on behalf of role. On success a
// StatusChange is appended to the history; on any failure the order is left
// untouched and a typed error is returned:
//
//   - ErrAlreadyTerminal: the order is delivered or cancelled
//   - ErrInvalidTransition: target is not reachable from the current status
//   - ErrUnauthorizedRole: role may not perform this edge
//   - ErrNoDriverAssigned: out_for_delivery without a driver
//   - ErrPaymentNotSettled: confirming an unpaid card order
func (o *Order) TransitionTo(target Status, role ActorRole, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	if o.status.IsTerminal() {
		return ErrAlreadyTerminal
	}

	if target == StatusCancelled {
		if !o.status.RoleMayCancel(role) {
			return ErrUnauthorizedRole
		}
		o.apply(target, role, at)
		return nil
	}

	if !o.status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	if !o.status.RoleMayTransition(target, role) {
		return ErrUnauthorizedRole
	}

	switch {
	case o.status == StatusPending && target == StatusConfirmed:
		if o.paymentMethod.RequiresPrepayment() && !o.paymentPaid {
			return ErrPaymentNotSettled
		}
	case o.status == StatusReady && target == StatusOutForDelivery:
		if o.deliveryType != DeliveryTypeDelivery {
			return ErrInvalidTransition
		}
		if o.driverID == nil {
			return ErrNoDriverAssigned
		}
	case o.status == StatusReady && target == StatusDelivered:
		// Direct handover exists only for pickup orders.
		if o.deliveryType != DeliveryTypePickup {
			return ErrInvalidTransition
		}
	}

	o.apply(target, role, at)
	return nil
}

// AssignDriver records the winning driver of the dispatch race. The driver is
// set at most once and only while the order is ready; re-assignment after a
// release is allowed because the release cleared the previous driver.
func (o *Order) AssignDriver(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if o.status != StatusReady {
		return ErrDriverNotAssignable
	}
	if o.driverID != nil {
		return ErrDriverAlreadySet
	}
	o.driverID = &driverID
	return nil
}

// ReleaseDriver clears the driver assignment so the order can be re-offered.
// Only valid while the order is still ready: once out for delivery the
// assignment can no longer be revoked through dispatch.
func (o *Order) ReleaseDriver() error {
	if o.status != StatusReady {
		return ErrDriverNotAssignable
	}
	o.driverID = nil
	return nil
}

func (o *Order) apply(target Status, role ActorRole, at time.Time) {
	o.status = target
	o.history = append(o.history, StatusChange{Status: target, At: at, Actor: role})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	o.tenantID = tenantID
	return nil
}

func (o *Order) setCustomer(customer Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	o.customer = customer
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = append([]Item(nil), items...)
	return nil
}

func (o *Order) setDeliveryType(deliveryType DeliveryType) error {
	if err := deliveryType.Validate(); err != nil {
		return err
	}
	o.deliveryType = deliveryType
	return nil
}

func (o *Order) setPaymentMethod(paymentMethod PaymentMethod) error {
	if err := paymentMethod.Validate(); err != nil {
		return err
	}
	o.paymentMethod = paymentMethod
	return nil
}

func (o *Order) setExternalRef(ref *ExternalRef, rawMetadata []byte) error {
	if ref == nil {
		return nil
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	o.externalRef = ref
	o.rawMetadata = append([]byte(nil), rawMetadata...)
	return nil
}

func sumItems(items []Item) kernel.Money {
	var sum kernel.Money
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
