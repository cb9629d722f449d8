// Package ingestion turns external delivery-platform webhooks into canonical
// orders. Each platform has its own payload schema and signature scheme; a
// Normalizer maps one platform's JSON into the shared ingestion command, and
// everything it does not map rides along as raw metadata for audit.
package ingestion

import (
	"errors"
	"fmt"
	"math"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/model/order"
)

var (
	// ErrUnknownPlatform is returned for a webhook path that names no
	// registered platform. Handlers map it to 404.
	ErrUnknownPlatform = errors.New("unknown delivery platform")
	// ErrMalformedPayload is returned when a payload cannot be mapped to a
	// canonical order. Handlers map it to 400 so the platform stops retrying.
	ErrMalformedPayload = errors.New("malformed platform payload")
)

// Normalizer maps one platform's webhook payload into the canonical ingestion
// command. Implementations must not mutate or retain rawBody.
type Normalizer interface {
	Platform() order.Platform
	Normalize(tenantID kernel.UUID, rawBody []byte) (commands.IngestExternalOrderCommand, error)
}

// Registry resolves the Normalizer for a platform name.
type Registry struct {
	normalizers map[order.Platform]Normalizer
}

// NewRegistry indexes the given normalizers by platform.
func NewRegistry(normalizers ...Normalizer) *Registry {
	indexed := make(map[order.Platform]Normalizer, len(normalizers))
	for _, n := range normalizers {
		indexed[n.Platform()] = n
	}
	return &Registry{normalizers: indexed}
}

// Resolve returns the normalizer registered for the platform name, or
// ErrUnknownPlatform.
func (r *Registry) Resolve(platform string) (Normalizer, error) {
	n, ok := r.normalizers[order.Platform(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return n, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}

// centsFromDecimal converts a platform's decimal currency amount to cents.
// Platforms send "12.90"-style floats; half-cent rounding errors round away
// from zero.
func centsFromDecimal(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// buildItems converts pre-validated line data into domain items.
func buildItems(lines []itemLine) ([]order.Item, error) {
	items := make([]order.Item, 0, len(lines))
	for _, line := range lines {
		unitPrice, err := kernel.NewMoney(line.unitPriceCents)
		if err != nil {
			return nil, malformed("item %q: %v", line.name, err)
		}
		item, err := order.NewItem(kernel.NewUUID(), line.name, line.quantity, unitPrice)
		if err != nil {
			return nil, malformed("item %q: %v", line.name, err)
		}
		items = append(items, item)
	}
	return items, nil
}

type itemLine struct {
	name           string
	quantity       int
	unitPriceCents int64
}

// buildCustomer converts platform customer data into the domain value object.
// External platforms have their own customer identity; a fresh internal ID is
// minted per ingested order.
func buildCustomer(name, phone, address string, lat, lon float64) (order.Customer, error) {
	location, err := kernel.NewGeoPoint(lat, lon)
	if err != nil {
		return order.Customer{}, malformed("customer location: %v", err)
	}
	customer, err := order.NewCustomer(kernel.NewUUID(), name, phone, address, location)
	if err != nil {
		return order.Customer{}, malformed("customer: %v", err)
	}
	return customer, nil
}
