package services

import (
	"math"
	"sort"

	"foodcourt/internal/core/domain/model/kernel"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// averageSpeedKmh is the assumed driver travel speed for ETA estimates.
const averageSpeedKmh = 30.0

// preparationBufferMinutes is the fixed kitchen buffer added to every ETA.
const preparationBufferMinutes = 15

// DistanceKm returns the great-circle distance between two points using the
// haversine formula, rounded to two decimal places. The result is symmetric:
// DistanceKm(a, b) == DistanceKm(b, a).
func DistanceKm(from, to kernel.GeoPoint) float64 {
	lat1 := from.Lat() * math.Pi / 180
	lat2 := to.Lat() * math.Pi / 180
	dLat := (to.Lat() - from.Lat()) * math.Pi / 180
	dLon := (to.Lon() - from.Lon()) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusKm*c*100) / 100
}

// EtaMinutes estimates delivery time for a distance: travel at the average
// speed, rounded up to whole minutes, plus the fixed preparation buffer.
func EtaMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm/averageSpeedKmh*60)) + preparationBufferMinutes
}

// FeePolicy computes delivery fees from distance. Amounts are integer cents.
type FeePolicy struct {
	baseFee   kernel.Money
	perKmRate kernel.Money
}

// NewFeePolicy creates a fee policy with a flat base fee and a per-kilometer
// rate.
func NewFeePolicy(baseFee, perKmRate kernel.Money) FeePolicy {
	return FeePolicy{baseFee: baseFee, perKmRate: perKmRate}
}

// DeliveryFee returns baseFee plus the distance component, with the distance
// component rounded up to the next cent. Zero distance charges exactly the
// base fee.
func (p FeePolicy) DeliveryFee(distanceKm float64) kernel.Money {
	variable := int64(math.Ceil(distanceKm * float64(p.perKmRate.Cents())))
	fee, _ := kernel.NewMoney(p.baseFee.Cents() + variable)
	return fee
}

// DriverCandidate is a driver considered for an order offer, with the last
// known location from the presence store.
type DriverCandidate struct {
	DriverID kernel.UUID
	Location kernel.GeoPoint
}

// RankNearest orders candidates by ascending distance to target. The sort is
// stable: candidates at equal distance keep their input order, so the offer
// fan-out is deterministic for a given presence snapshot.
func RankNearest(target kernel.GeoPoint, candidates []DriverCandidate) []DriverCandidate {
	ranked := append([]DriverCandidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return DistanceKm(ranked[i].Location, target) < DistanceKm(ranked[j].Location, target)
	})
	return ranked
}
