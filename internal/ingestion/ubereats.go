package ingestion

import (
	"encoding/json"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
)

// uberEatsPayload mirrors the fields of the Uber Eats order webhook this
// service maps. Amounts are integer cents nested under price objects.
type uberEatsPayload struct {
	ID    string `json:"id"`
	Eater struct {
		FirstName string `json:"first_name"`
		Phone     string `json:"phone"`
	} `json:"eater"`
	Dropoff struct {
		Address  string `json:"address"`
		Location struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	} `json:"dropoff"`
	Cart struct {
		Items []struct {
			Title    string `json:"title"`
			Quantity int    `json:"quantity"`
			Price    struct {
				UnitPrice struct {
					Amount int64 `json:"amount"`
				} `json:"unit_price"`
			} `json:"price"`
		} `json:"items"`
	} `json:"cart"`
	Charges struct {
		DeliveryFee struct {
			Amount int64 `json:"amount"`
		} `json:"delivery_fee"`
	} `json:"charges"`
	Type string `json:"type"` // DELIVERY_BY_UBER, DELIVERY_BY_RESTAURANT or PICK_UP
}

// UberEatsNormalizer maps Uber Eats order webhooks to the canonical command.
type UberEatsNormalizer struct{}

// NewUberEatsNormalizer creates the Uber Eats normalizer.
func NewUberEatsNormalizer() UberEatsNormalizer {
	return UberEatsNormalizer{}
}

// Platform returns the platform identifier this normalizer serves.
func (UberEatsNormalizer) Platform() order.Platform {
	return order.PlatformUberEats
}

// Normalize maps an Uber Eats payload to the canonical ingestion command.
func (n UberEatsNormalizer) Normalize(
	tenantID kernel.UUID,
	rawBody []byte,
) (commands.IngestExternalOrderCommand, error) {
	var payload uberEatsPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("ubereats: %v", err)
	}
	if payload.ID == "" {
		return commands.IngestExternalOrderCommand{}, malformed("ubereats: missing order id")
	}
	if len(payload.Cart.Items) == 0 {
		return commands.IngestExternalOrderCommand{}, malformed("ubereats: order %s has an empty cart", payload.ID)
	}

	ref, err := order.NewExternalRef(order.PlatformUberEats, payload.ID)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("ubereats: %v", err)
	}

	customer, err := buildCustomer(
		payload.Eater.FirstName, payload.Eater.Phone, payload.Dropoff.Address,
		payload.Dropoff.Location.Latitude, payload.Dropoff.Location.Longitude)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, err
	}

	lines := make([]itemLine, 0, len(payload.Cart.Items))
	for _, item := range payload.Cart.Items {
		lines = append(lines, itemLine{
			name:           item.Title,
			quantity:       item.Quantity,
			unitPriceCents: item.Price.UnitPrice.Amount,
		})
	}
	items, err := buildItems(lines)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, err
	}

	fee, err := kernel.NewMoney(payload.Charges.DeliveryFee.Amount)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("ubereats: delivery fee: %v", err)
	}

	deliveryType := order.DeliveryTypeDelivery
	if payload.Type == "PICK_UP" {
		deliveryType = order.DeliveryTypePickup
	}

	// Uber Eats always charges the eater in-app; nothing is collected on
	// delivery.
	return commands.NewIngestExternalOrderCommand(
		tenantID, ref, customer, items, fee, deliveryType,
		order.PaymentMethodCard, true, rawBody)
}
