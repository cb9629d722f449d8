package commands

import (
	"context"
	"time"

	"foodcourt/internal/core/application/presence"
	"foodcourt/internal/core/domain/model/order"
	"foodcourt/internal/core/domain/services"
	"foodcourt/internal/core/ports"
	"foodcourt/internal/realtime"
)

// publishOrderOffers fans a claimable order out to the tenant's online
// drivers as individual order_offer events, nearest to the dropoff first.
// A driver whose last ping expired has no presence entry and receives no
// offer. Fan-out runs after commit and is best-effort: a driver that missed
// it still finds the order through the available list.
func publishOrderOffers(
	ctx context.Context,
	tracker *presence.Tracker,
	publisher ports.EventPublisher,
	aggregate *order.Order,
) {
	candidates, err := tracker.Candidates(ctx, aggregate.TenantID())
	if err != nil {
		return
	}

	dropoff := aggregate.Customer().Location()
	for _, candidate := range services.RankNearest(dropoff, candidates) {
		distance := services.DistanceKm(candidate.Location, dropoff)
		publisher.Publish(realtime.Event{
			Kind:     realtime.EventOrderOffer,
			TenantID: aggregate.TenantID().String(),
			OrderID:  aggregate.ID().String(),
			Payload: map[string]any{
				"customerAddress":  aggregate.Customer().Address(),
				"totalCents":       aggregate.Total().Cents(),
				"deliveryFeeCents": aggregate.DeliveryFee().Cents(),
				"distanceKm":       distance,
				"etaMinutes":       services.EtaMinutes(distance),
			},
			Timestamp: time.Now(),
		}.WithTarget(realtime.TargetPrincipal(
			aggregate.TenantID(), order.RoleDriver, candidate.DriverID)))
	}
}
