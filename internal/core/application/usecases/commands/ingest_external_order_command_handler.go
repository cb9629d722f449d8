package commands

import (
	"context"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/realtime"
)

// IngestResult reports the outcome of one webhook ingestion.
type IngestResult struct {
	// OrderID identifies the canonical order for the webhook's external
	// reference, whether it was created now or earlier.
	OrderID kernel.UUID
	// Created is false for duplicate deliveries of an already-ingested order.
	Created bool
}

// IngestExternalOrderCommandHandler turns normalized platform orders into
// canonical orders. Ingestion is idempotent on the (platform, externalID)
// pair: platforms redeliver webhooks on timeouts, and a redelivery must
// neither duplicate the order nor fail.
type IngestExternalOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewIngestExternalOrderCommandHandler creates a handler for webhook ingestion.
func NewIngestExternalOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
) IngestExternalOrderCommandHandler {
	return IngestExternalOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes a normalized external order. Duplicates are detected by
// external reference before insert; concurrent duplicate deliveries that slip
// past the lookup are caught by the storage uniqueness constraint and
// resolved to the already-ingested order.
func (h *IngestExternalOrderCommandHandler) Handle(
	ctx context.Context, cmd IngestExternalOrderCommand,
) (IngestResult, error) {
	if err := cmd.Validate(); err != nil {
		return IngestResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return IngestResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	existing, err := uow.OrderRepository().GetByExternalRef(ctx, cmd.ExternalRef())
	if err != nil {
		return IngestResult{}, err
	}
	if existing != nil {
		return IngestResult{OrderID: existing.ID(), Created: false}, nil
	}

	ref := cmd.ExternalRef()
	newOrder, err := order.NewOrder(
		kernel.NewUUID(), cmd.TenantID(), cmd.Customer(), cmd.Items(),
		cmd.DeliveryFee(), cmd.DeliveryType(), cmd.PaymentMethod(), &ref,
		cmd.RawMetadata(), time.Now(), order.RoleSystem)
	if err != nil {
		return IngestResult{}, err
	}
	if cmd.PaymentSettled() {
		newOrder.MarkPaid()
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		// A concurrent delivery of the same webhook may have won the insert.
		winner, lookupErr := h.lookupWinner(ctx, cmd.ExternalRef())
		if lookupErr == nil && winner != nil {
			return IngestResult{OrderID: winner.ID(), Created: false}, nil
		}
		return IngestResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return IngestResult{}, err
	}

	h.publisher.Publish(realtime.Event{
		Kind:     realtime.EventOrderCreated,
		TenantID: cmd.TenantID().String(),
		OrderID:  newOrder.ID().String(),
		Payload: map[string]any{
			"status":   string(newOrder.Status()),
			"platform": cmd.ExternalRef().Platform().String(),
			"total":    newOrder.Total().Cents(),
		},
		Timestamp: time.Now(),
	}.WithTarget(realtime.TargetRoles(cmd.TenantID(), order.RoleRestaurant, order.RoleKitchen)))

	return IngestResult{OrderID: newOrder.ID(), Created: true}, nil
}

// lookupWinner re-reads the external reference outside the failed transaction.
func (h *IngestExternalOrderCommandHandler) lookupWinner(
	ctx context.Context, ref order.ExternalRef,
) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().GetByExternalRef(ctx, ref)
}
