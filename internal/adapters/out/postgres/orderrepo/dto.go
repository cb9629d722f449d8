// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"encoding/json"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Line items and the status history are stored as JSONB documents: they are
// always read and written with the whole aggregate and never queried
// relationally. The (external_platform, external_id) pair carries a unique
// index, which is what makes webhook ingestion idempotent under concurrency.
type OrderDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID  `gorm:"type:uuid;index"`
	ExternalPlatform *string    `gorm:"uniqueIndex:idx_orders_external_ref"`
	ExternalID       *string    `gorm:"uniqueIndex:idx_orders_external_ref"`
	RawMetadata      []byte     `gorm:"type:jsonb"`
	CustomerID       uuid.UUID  `gorm:"type:uuid"`
	CustomerName     string
	CustomerPhone    string
	CustomerAddress  string
	CustomerLat      float64
	CustomerLon      float64
	Items            []byte     `gorm:"type:jsonb"`
	SubtotalCents    int64
	DeliveryFeeCents int64
	TotalCents       int64
	DeliveryType     string
	PaymentMethod    string
	PaymentSettled   bool
	DriverID         *uuid.UUID `gorm:"type:uuid;index"`
	Status           string     `gorm:"index"`
	History          []byte     `gorm:"type:jsonb"`
	Version          int        `gorm:"not null;default:1"`
	CreatedAt        time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

type itemDTO struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

type statusChangeDTO struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	items := make([]itemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemDTO{
			ProductID:      item.ProductID().Bytes(),
			Name:           item.Name(),
			Quantity:       item.Quantity(),
			UnitPriceCents: item.UnitPrice().Cents(),
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}

	history := make([]statusChangeDTO, 0, len(aggregate.History()))
	for _, change := range aggregate.History() {
		history = append(history, statusChangeDTO{
			Status: string(change.Status),
			At:     change.At,
			Actor:  string(change.Actor),
		})
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return OrderDTO{}, err
	}

	var platform, externalID *string
	if ref := aggregate.ExternalRef(); ref != nil {
		p, id := ref.Platform().String(), ref.ExternalID()
		platform, externalID = &p, &id
	}

	var driverID *uuid.UUID
	if id := aggregate.Driver(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	customer := aggregate.Customer()
	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		TenantID:         aggregate.TenantID().Bytes(),
		ExternalPlatform: platform,
		ExternalID:       externalID,
		RawMetadata:      aggregate.RawMetadata(),
		CustomerID:       customer.ID().Bytes(),
		CustomerName:     customer.Name(),
		CustomerPhone:    customer.Phone(),
		CustomerAddress:  customer.Address(),
		CustomerLat:      customer.Location().Lat(),
		CustomerLon:      customer.Location().Lon(),
		Items:            itemsJSON,
		SubtotalCents:    aggregate.Subtotal().Cents(),
		DeliveryFeeCents: aggregate.DeliveryFee().Cents(),
		TotalCents:       aggregate.Total().Cents(),
		DeliveryType:     string(aggregate.DeliveryType()),
		PaymentMethod:    string(aggregate.PaymentMethod()),
		PaymentSettled:   aggregate.PaymentSettled(),
		DriverID:         driverID,
		Status:           string(aggregate.Status()),
		History:          historyJSON,
		Version:          aggregate.Version(),
		CreatedAt:        aggregate.CreatedAt(),
	}, nil
}

// toDomain converts a database row back into an order aggregate via
// RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	tenantID, err := kernel.UUIDFromBytes(dto.TenantID[:])
	if err != nil {
		return nil, err
	}

	customer, err := restoreCustomer(dto)
	if err != nil {
		return nil, err
	}

	var rawItems []itemDTO
	if err = json.Unmarshal(dto.Items, &rawItems); err != nil {
		return nil, err
	}
	items := make([]order.Item, 0, len(rawItems))
	for _, raw := range rawItems {
		productID, itemErr := kernel.UUIDFromBytes(raw.ProductID[:])
		if itemErr != nil {
			return nil, itemErr
		}
		unitPrice, itemErr := kernel.NewMoney(raw.UnitPriceCents)
		if itemErr != nil {
			return nil, itemErr
		}
		item, itemErr := order.NewItem(productID, raw.Name, raw.Quantity, unitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var rawHistory []statusChangeDTO
	if err = json.Unmarshal(dto.History, &rawHistory); err != nil {
		return nil, err
	}
	history := make([]order.StatusChange, 0, len(rawHistory))
	for _, raw := range rawHistory {
		history = append(history, order.StatusChange{
			Status: order.Status(raw.Status),
			At:     raw.At,
			Actor:  order.ActorRole(raw.Actor),
		})
	}

	var externalRef *order.ExternalRef
	if dto.ExternalPlatform != nil && dto.ExternalID != nil {
		ref, refErr := order.NewExternalRef(order.Platform(*dto.ExternalPlatform), *dto.ExternalID)
		if refErr != nil {
			return nil, refErr
		}
		externalRef = &ref
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	deliveryFee, err := kernel.NewMoney(dto.DeliveryFeeCents)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id, tenantID, customer, items, deliveryFee,
		order.DeliveryType(dto.DeliveryType), order.PaymentMethod(dto.PaymentMethod),
		dto.PaymentSettled, externalRef, dto.RawMetadata, driverID,
		order.Status(dto.Status), history, dto.Version, dto.CreatedAt)
}

func restoreCustomer(dto OrderDTO) (order.Customer, error) {
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return order.Customer{}, err
	}
	location, err := kernel.NewGeoPoint(dto.CustomerLat, dto.CustomerLon)
	if err != nil {
		return order.Customer{}, err
	}
	return order.NewCustomer(
		customerID, dto.CustomerName, dto.CustomerPhone, dto.CustomerAddress, location)
}
