package kernel

import (
	"fmt"

	"foodcourt/internal/pkg/errs"
	"foodcourt/internal/pkg/guard"
)

const (
	// GeoPointMinLat is the minimum valid latitude in decimal degrees.
	GeoPointMinLat = -90.0
	// GeoPointMaxLat is the maximum valid latitude in decimal degrees.
	GeoPointMaxLat = 90.0
	// GeoPointMinLon is the minimum valid longitude in decimal degrees.
	GeoPointMinLon = -180.0
	// GeoPointMaxLon is the maximum valid longitude in decimal degrees.
	GeoPointMaxLon = 180.0
)

// ErrGeoPointIsNotConstructed is returned when using an improperly initialized GeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint is a WGS84 coordinate pair in decimal degrees. It is an immutable
// value object; the zero value is invalid and fails Validate.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(-23.5505, -46.6333)
//	if err != nil {
//	    // coordinates out of range
//	}
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint, validating both coordinates against their
// WGS84 ranges.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := point.setLat(lat); err != nil {
		return GeoPoint{}, err
	}
	if err := point.setLon(lon); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lon returns the longitude in decimal degrees.
func (p GeoPoint) Lon() float64 {
	return p.lon
}

// IsEqual reports whether two points have identical coordinates.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lon == other.lon
}

// Validate ensures the point was created through NewGeoPoint.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// String renders the point as "(lat,lon)" for logs.
func (p GeoPoint) String() string {
	return fmt.Sprintf("(%g,%g)", p.lat, p.lon)
}

func (p *GeoPoint) setLat(lat float64) error {
	if lat < GeoPointMinLat || lat > GeoPointMaxLat {
		return errs.NewValueIsOutOfRangeError("latitude", lat, GeoPointMinLat, GeoPointMaxLat)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLon(lon float64) error {
	if lon < GeoPointMinLon || lon > GeoPointMaxLon {
		return errs.NewValueIsOutOfRangeError("longitude", lon, GeoPointMinLon, GeoPointMaxLon)
	}
	p.lon = lon
	return nil
}
