// Package presence tracks which drivers are online and where, backed by the
// ephemeral store. Entries expire on their own when a driver stops pinging,
// so a crashed app never leaves a ghost driver in the dispatch pool.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/services"
	"foodcourt/internal/pkg/ephemeral"
)

// DefaultTTL is how long a location ping stays valid without a successor.
// It is twice the expected ping interval, so one lost ping does not flap the
// driver offline.
const DefaultTTL = 30 * time.Second

const namespacePrefix = "presence"

type ping struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Tracker records driver location pings and answers dispatch's
// "who is online near this restaurant" question.
type Tracker struct {
	store ephemeral.Store
	ttl   time.Duration
}

// NewTracker creates a tracker on top of the given store. ttl <= 0 falls back
// to DefaultTTL.
func NewTracker(store ephemeral.Store, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{store: store, ttl: ttl}
}

// Record stores a location ping. Pings carry a client timestamp; a ping older
// than the currently stored one is ignored (updated=false) so reordered
// deliveries cannot move a driver backwards.
func (t *Tracker) Record(
	ctx context.Context,
	tenantID, driverID kernel.UUID,
	location kernel.GeoPoint,
	recordedAt time.Time,
) (updated bool, err error) {
	ns := t.namespace(tenantID)
	key := driverID.String()

	raw, ok, err := t.store.Get(ctx, ns, key)
	if err != nil {
		return false, err
	}
	if ok {
		var previous ping
		if err = json.Unmarshal(raw, &previous); err != nil {
			return false, fmt.Errorf("corrupt presence entry for driver %s: %w", key, err)
		}
		if !recordedAt.After(previous.RecordedAt) {
			return false, nil
		}
	}

	payload, err := json.Marshal(ping{
		Lat:        location.Lat(),
		Lon:        location.Lon(),
		RecordedAt: recordedAt,
	})
	if err != nil {
		return false, err
	}

	if err = t.store.Set(ctx, ns, key, payload, t.ttl); err != nil {
		return false, err
	}
	return true, nil
}

// MarkOffline drops a driver's presence entry, used on explicit disconnect.
// Offlining an unknown driver is a no-op.
func (t *Tracker) MarkOffline(ctx context.Context, tenantID, driverID kernel.UUID) error {
	return t.store.Delete(ctx, t.namespace(tenantID), driverID.String())
}

// Candidates returns every online driver of the tenant with their last known
// location, in unspecified order. Callers rank with services.RankNearest.
func (t *Tracker) Candidates(ctx context.Context, tenantID kernel.UUID) ([]services.DriverCandidate, error) {
	entries, err := t.store.List(ctx, t.namespace(tenantID))
	if err != nil {
		return nil, err
	}

	candidates := make([]services.DriverCandidate, 0, len(entries))
	for key, raw := range entries {
		driverID, err := kernel.UUIDFromString(key)
		if err != nil {
			continue
		}
		var p ping
		if err = json.Unmarshal(raw, &p); err != nil {
			continue
		}
		location, err := kernel.NewGeoPoint(p.Lat, p.Lon)
		if err != nil {
			continue
		}
		candidates = append(candidates, services.DriverCandidate{
			DriverID: driverID,
			Location: location,
		})
	}
	return candidates, nil
}

// LastKnown returns the driver's most recent ping, or ok=false when the
// driver is offline or the entry expired.
func (t *Tracker) LastKnown(
	ctx context.Context,
	tenantID, driverID kernel.UUID,
) (location kernel.GeoPoint, recordedAt time.Time, ok bool, err error) {
	raw, ok, err := t.store.Get(ctx, t.namespace(tenantID), driverID.String())
	if err != nil || !ok {
		return kernel.GeoPoint{}, time.Time{}, false, err
	}

	var p ping
	if err = json.Unmarshal(raw, &p); err != nil {
		return kernel.GeoPoint{}, time.Time{}, false, fmt.Errorf(
			"corrupt presence entry for driver %s: %w", driverID.String(), err)
	}
	location, err = kernel.NewGeoPoint(p.Lat, p.Lon)
	if err != nil {
		return kernel.GeoPoint{}, time.Time{}, false, err
	}
	return location, p.RecordedAt, true, nil
}

// OnlineCount returns how many drivers of the tenant currently have a live
// presence entry. It counts entries, not sessions: a driver that stopped
// pinging drops out of the count when the entry expires, with no explicit
// sign-off required.
func (t *Tracker) OnlineCount(ctx context.Context, tenantID kernel.UUID) (int64, error) {
	entries, err := t.store.List(ctx, t.namespace(tenantID))
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

func (t *Tracker) namespace(tenantID kernel.UUID) string {
	return namespacePrefix + ":" + tenantID.String()
}
