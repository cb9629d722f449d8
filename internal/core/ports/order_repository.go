// Package ports defines the contracts between the application core and
// infrastructure adapters: repositories, the unit of work and the realtime
// event publisher.
package ports

import (
	"context"
	"errors"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
)

// ErrConcurrentUpdate is returned by Update when the stored row moved past
// the aggregate's version, meaning another transaction changed the order
// after this one loaded it.
var ErrConcurrentUpdate = errors.New("order was modified concurrently")

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate. The write is
	// optimistic: it fails with ErrConcurrentUpdate when the stored version no
	// longer matches the one the aggregate was loaded with.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByExternalRef retrieves the order ingested for the given platform
	// reference, if any. This is the idempotency lookup of webhook ingestion.
	GetByExternalRef(ctx context.Context, ref order.ExternalRef) (*order.Order, error)

	// GetAllInStatus retrieves all of a tenant's orders in the given status,
	// oldest first. Used by the dispatch pool (ready orders) and dashboards.
	GetAllInStatus(ctx context.Context, tenantID kernel.UUID, status order.Status) ([]*order.Order, error)
}
