package queries

import (
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/pkg/guard"
)

var ErrGetAvailableOrdersQueryIsNotConstructed = errors.New(
	"GetAvailableOrdersQuery must be created via NewGetAvailableOrdersQuery constructor",
)

// GetAvailableOrdersQuery lists the orders a driver can still claim: ready,
// delivery-type and without an active assignment. When the driver's location
// is known, each row carries the distance and ETA to the restaurant's customer
// so the client can sort offers by proximity.
type GetAvailableOrdersQuery struct { //nolint:recvcheck //using for validation
	tenantID       kernel.UUID
	driverLocation *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewGetAvailableOrdersQuery creates the query. driverLocation is optional;
// pass nil when the caller has no recent fix.
func NewGetAvailableOrdersQuery(
	tenantID kernel.UUID,
	driverLocation *kernel.GeoPoint,
) (GetAvailableOrdersQuery, error) {
	query := GetAvailableOrdersQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setTenantID(tenantID),
		query.setDriverLocation(driverLocation),
	); err != nil {
		return GetAvailableOrdersQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableOrdersQueryIsNotConstructed)
}

// TenantID returns the tenant whose offers are listed.
func (q GetAvailableOrdersQuery) TenantID() kernel.UUID { return q.tenantID }

// DriverLocation returns the driver's last known location, or nil.
func (q GetAvailableOrdersQuery) DriverLocation() *kernel.GeoPoint { return q.driverLocation }

func (q *GetAvailableOrdersQuery) setTenantID(tenantID kernel.UUID) error {
	if err := tenantID.Validate(); err != nil {
		return err
	}
	q.tenantID = tenantID
	return nil
}

func (q *GetAvailableOrdersQuery) setDriverLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	q.driverLocation = location
	return nil
}

// AvailableOrderResponse is one claimable order. DistanceKm and EtaMinutes are
// zero when the query carried no driver location.
type AvailableOrderResponse struct {
	OrderID          kernel.UUID
	CustomerAddress  string
	CustomerLocation kernel.GeoPoint
	TotalCents       int64
	DeliveryFeeCents int64
	DistanceKm       float64
	EtaMinutes       int
}
