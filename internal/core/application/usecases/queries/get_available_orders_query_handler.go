package queries

import (
	"context"
	"sort"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/domain/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableOrdersQueryHandler reads claimable orders straight from the
// database, bypassing the aggregate: the dispatch offer screen needs a handful
// of columns, not full order reconstruction. The anti-join on active
// assignments mirrors the accept path's conflict rule, so an order never shows
// as available while a driver holds it.
type GetAvailableOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableOrdersQueryHandler creates a handler for dispatch offer queries.
func NewGetAvailableOrdersQueryHandler(db *gorm.DB) GetAvailableOrdersQueryHandler {
	return GetAvailableOrdersQueryHandler{db: db}
}

// Handle returns the tenant's claimable orders, oldest first. When the query
// carries a driver location, responses are enriched with distance and ETA and
// re-sorted nearest first.
func (h GetAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableOrdersQuery,
) ([]AvailableOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.customer_address,
			o.customer_lat,
			o.customer_lon,
			o.total_cents,
			o.delivery_fee_cents
		FROM orders o
		LEFT JOIN assignments a ON a.order_id = o.id AND a.status = 'active'
		WHERE o.tenant_id = ?
		  AND o.status = ?
		  AND o.delivery_type = ?
		  AND o.driver_id IS NULL
		  AND a.order_id IS NULL
		ORDER BY o.created_at
	`, query.TenantID().Bytes(), order.StatusReady, order.DeliveryTypeDelivery).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]AvailableOrderResponse, 0)
	for rows.Next() {
		var id uuid.UUID
		var resp AvailableOrderResponse
		var lat, lon float64

		err = rows.Scan(
			&id,
			&resp.CustomerAddress,
			&lat,
			&lon,
			&resp.TotalCents,
			&resp.DeliveryFeeCents,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = orderID

		location, locErr := kernel.NewGeoPoint(lat, lon)
		if locErr != nil {
			return nil, locErr
		}
		resp.CustomerLocation = location

		if from := query.DriverLocation(); from != nil {
			resp.DistanceKm = services.DistanceKm(*from, location)
			resp.EtaMinutes = services.EtaMinutes(resp.DistanceKm)
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if query.DriverLocation() != nil {
		sortByDistance(orders)
	}
	return orders, nil
}

// sortByDistance orders responses nearest first; ties keep insertion
// (creation) order.
func sortByDistance(orders []AvailableOrderResponse) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].DistanceKm < orders[j].DistanceKm
	})
}
