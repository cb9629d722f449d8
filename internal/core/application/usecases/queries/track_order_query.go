package queries

import (
	"errors"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/pkg/guard"
)

var ErrTrackOrderQueryIsNotConstructed = errors.New(
	"TrackOrderQuery must be created via NewTrackOrderQuery constructor",
)

// TrackOrderQuery asks for the customer-facing view of one order: current
// status, the full status timeline and, once a driver is on the way, the
// driver's last reported position.
type TrackOrderQuery struct { //nolint:recvcheck //using for validation
	tenantID kernel.UUID
	orderID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewTrackOrderQuery creates a tracking query. The tenant is part of the key:
// an order ID from another tenant reads as not found.
func NewTrackOrderQuery(tenantID, orderID kernel.UUID) (TrackOrderQuery, error) {
	query := TrackOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setTenantID(tenantID),
		query.setOrderID(orderID),
	); err != nil {
		return TrackOrderQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

// TenantID returns the tenant scoping the lookup.
func (q TrackOrderQuery) TenantID() kernel.UUID { return q.tenantID }

// OrderID returns the tracked order.
func (q TrackOrderQuery) OrderID() kernel.UUID { return q.orderID }

func (q *TrackOrderQuery) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	q.tenantID = tenantID
	return nil
}

func (q *TrackOrderQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

// DriverPosition is the driver's last presence ping attached to a tracking
// response.
type DriverPosition struct {
	Location   kernel.GeoPoint
	RecordedAt time.Time
}

// TrackOrderResponse is the tracking view of one order. Driver is nil until a
// driver accepted the order; DriverLocation is nil whenever the driver has no
// live presence entry.
type TrackOrderResponse struct {
	OrderID        kernel.UUID
	Status         order.Status
	DeliveryType   order.DeliveryType
	History        []order.StatusChange
	Driver         *kernel.UUID
	DriverLocation *DriverPosition
}
