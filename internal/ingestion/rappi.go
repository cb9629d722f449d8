package ingestion

import (
	"encoding/json"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
)

// rappiPayload mirrors the fields of the Rappi order webhook this service
// maps. Rappi reports amounts as integer cents and snake_cases everything.
type rappiPayload struct {
	OrderID string `json:"order_id"`
	Client  struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	} `json:"client"`
	Address struct {
		Description string  `json:"description"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
	} `json:"address"`
	Products []struct {
		Name  string `json:"name"`
		Units int    `json:"units"`
		Price int64  `json:"price"`
	} `json:"products"`
	DeliveryFee   int64  `json:"delivery_fee"`
	PaymentMethod string `json:"payment_method"` // cc, cash or pix
	Prepaid       bool   `json:"prepaid"`
	Pickup        bool   `json:"pickup"`
}

// RappiNormalizer maps Rappi order webhooks to the canonical command.
type RappiNormalizer struct{}

// NewRappiNormalizer creates the Rappi normalizer.
func NewRappiNormalizer() RappiNormalizer {
	return RappiNormalizer{}
}

// Platform returns the platform identifier this normalizer serves.
func (RappiNormalizer) Platform() order.Platform {
	return order.PlatformRappi
}

// Normalize maps a Rappi payload to the canonical ingestion command.
func (n RappiNormalizer) Normalize(
	tenantID kernel.UUID,
	rawBody []byte,
) (commands.IngestExternalOrderCommand, error) {
	var payload rappiPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("rappi: %v", err)
	}
	if payload.OrderID == "" {
		return commands.IngestExternalOrderCommand{}, malformed("rappi: missing order_id")
	}
	if len(payload.Products) == 0 {
		return commands.IngestExternalOrderCommand{}, malformed("rappi: order %s has no products", payload.OrderID)
	}

	ref, err := order.NewExternalRef(order.PlatformRappi, payload.OrderID)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("rappi: %v", err)
	}

	name := payload.Client.FirstName
	if payload.Client.LastName != "" {
		name += " " + payload.Client.LastName
	}
	customer, err := buildCustomer(
		name, payload.Client.Phone, payload.Address.Description,
		payload.Address.Lat, payload.Address.Lng)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, err
	}

	lines := make([]itemLine, 0, len(payload.Products))
	for _, product := range payload.Products {
		lines = append(lines, itemLine{
			name:           product.Name,
			quantity:       product.Units,
			unitPriceCents: product.Price,
		})
	}
	items, err := buildItems(lines)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, err
	}

	fee, err := kernel.NewMoney(payload.DeliveryFee)
	if err != nil {
		return commands.IngestExternalOrderCommand{}, malformed("rappi: delivery_fee: %v", err)
	}

	deliveryType := order.DeliveryTypeDelivery
	if payload.Pickup {
		deliveryType = order.DeliveryTypePickup
	}

	var paymentMethod order.PaymentMethod
	switch payload.PaymentMethod {
	case "cc":
		paymentMethod = order.PaymentMethodCard
	case "cash":
		paymentMethod = order.PaymentMethodCash
	case "pix":
		paymentMethod = order.PaymentMethodPix
	default:
		return commands.IngestExternalOrderCommand{}, malformed(
			"rappi: unknown payment_method %q", payload.PaymentMethod)
	}

	return commands.NewIngestExternalOrderCommand(
		tenantID, ref, customer, items, fee, deliveryType,
		paymentMethod, payload.Prepaid, rawBody)
}
