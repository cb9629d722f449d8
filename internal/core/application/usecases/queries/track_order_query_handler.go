package queries

import (
	"context"
	"encoding/json"
	"time"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackOrderQueryHandler serves the customer tracking screen. The order row is
// read directly; the driver position comes from the presence tracker, so a
// driver whose pings expired simply shows no position instead of a stale one.
type TrackOrderQueryHandler struct {
	db      *gorm.DB
	tracker *presence.Tracker
}

// NewTrackOrderQueryHandler creates a handler for order tracking queries.
func NewTrackOrderQueryHandler(db *gorm.DB, tracker *presence.Tracker) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{db: db, tracker: tracker}
}

// Handle returns the tracking view of the order, or errs.ErrObjectNotFound
// when no order matches the tenant/order pair.
func (h TrackOrderQueryHandler) Handle(
	ctx context.Context,
	query TrackOrderQuery,
) (TrackOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return TrackOrderResponse{}, err
	}

	var row struct {
		Status       string
		DeliveryType string
		History      []byte
		DriverID     *uuid.UUID
	}
	err := h.db.WithContext(ctx).Raw(`
		SELECT status, delivery_type, history, driver_id
		FROM orders
		WHERE tenant_id = ? AND id = ?
	`, query.TenantID().Bytes(), query.OrderID().Bytes()).Scan(&row).Error
	if err != nil {
		return TrackOrderResponse{}, err
	}
	if row.Status == "" {
		return TrackOrderResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	history, err := decodeHistory(row.History)
	if err != nil {
		return TrackOrderResponse{}, err
	}

	resp := TrackOrderResponse{
		OrderID:      query.OrderID(),
		Status:       order.Status(row.Status),
		DeliveryType: order.DeliveryType(row.DeliveryType),
		History:      history,
	}

	if row.DriverID != nil {
		driverID, idErr := kernel.UUIDFromBytes((*row.DriverID)[:])
		if idErr != nil {
			return TrackOrderResponse{}, idErr
		}
		resp.Driver = &driverID

		location, recordedAt, ok, presErr := h.tracker.LastKnown(ctx, query.TenantID(), driverID)
		if presErr != nil {
			return TrackOrderResponse{}, presErr
		}
		if ok {
			resp.DriverLocation = &DriverPosition{Location: location, RecordedAt: recordedAt}
		}
	}

	return resp, nil
}

func decodeHistory(raw []byte) ([]order.StatusChange, error) {
	var rows []struct {
		Status string    `json:"status"`
		At     time.Time `json:"at"`
		Actor  string    `json:"actor"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	history := make([]order.StatusChange, 0, len(rows))
	for _, row := range rows {
		history = append(history, order.StatusChange{
			Status: order.Status(row.Status),
			At:     row.At,
			Actor:  order.ActorRole(row.Actor),
		})
	}
	return history, nil
}
