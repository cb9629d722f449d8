// Package kernel provides the core domain primitives shared by every
// aggregate in foodcourt.
//
// The package includes:
//   - UUID: identifier value object with validation and comparison
//   - GeoPoint: a WGS84 coordinate pair with range validation
//   - Money: integer cents, the only representation used for amounts
//
// All primitives are immutable value objects constructed through factory
// functions that enforce their invariants; zero values fail Validate.
package kernel
