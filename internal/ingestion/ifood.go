package ingestion

import (
	"encoding/json"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
)

// ifoodPayload mirrors the fields of the iFood order webhook this service
// maps. Amounts arrive as decimal currency values.
type ifoodPayload struct {
	ID       string `json:"id"`
	Customer struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer"`
	DeliveryAddress struct {
		FormattedAddress string `json:"formattedAddress"`
		Coordinates      struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
	} `json:"deliveryAddress"`
	Items []struct {
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unitPrice"`
	} `json:"items"`
	DeliveryFee float64 `json:"deliveryFee"`
	OrderType   string  `json:"orderType"` // DELIVERY or TAKEOUT
	Payments    []struct {
		Method  string `json:"method"`
		Prepaid bool   `json:"prepaid"`
	} `json:"payments"`
}

// IfoodNormalizer maps iFood order webhooks to the canonical command.
type IfoodNormalizer struct{}

// NewIfoodNormalizer creates the iFood normalizer.
func NewIfoodNormalizer() IfoodNormalizer {
	return IfoodNormalizer{}
}

// Platform returns the platform identifier this normalizer serves.
func (IfoodNormalizer) Platform() order.Platform {
	return order.PlatformIfood
}

// Normalize maps an iFood payload to the canonical ingestion command.
func (n IfoodNormalizer) Normalize(
	tenantID kernel.UUID,
	rawBody []byte,
) (commands.IngestExternalOrderCommand, error) {
	var payload ifoodPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("ifood: %v", err)
	}
	if payload.ID == "" {
		return commands.IngestExternalOrderCommand{}, malformed("ifood: missing order id")
	}
	if len(payload.Items) == 0 {
		return commands.IngestExternalOrderCommand{}, malformed("ifood: order %s has no items", payload.ID)
	}

	ref, err := order.NewExternalRef(order.PlatformIfood, payload.ID)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("ifood: %v", err)
	}

	customer, err := buildCustomer(
		payload.Customer.Name, payload.Customer.Phone,
		payload.DeliveryAddress.FormattedAddress,
		payload.DeliveryAddress.Coordinates.Latitude,
		payload.DeliveryAddress.Coordinates.Longitude)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, err
	}

	lines := make([]itemLine, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, itemLine{
			name:           item.Name,
			quantity:       item.Quantity,
			unitPriceCents: centsFromDecimal(item.UnitPrice),
		})
	}
	items, err := buildItems(lines)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, err
	}

	fee, err := kernel.NewMoney(centsFromDecimal(payload.DeliveryFee))
	if err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("ifood: delivery fee: %v", err)
	}

	deliveryType := order.DeliveryTypeDelivery
	if payload.OrderType == "TAKEOUT" {
		deliveryType = order.DeliveryTypePickup
	}

	// iFood settles card payments on its side; only CASH methods collect on
	// delivery.
	paymentMethod, settled := order.PaymentMethodCard, true
	if len(payload.Payments) > 0 && payload.Payments[0].Method == "CASH" {
		paymentMethod, settled = order.PaymentMethodCash, false
	}

	return commands.NewIngestExternalOrderCommand(
		tenantID, ref, customer, items, fee, deliveryType,
		paymentMethod, settled, rawBody)
}
