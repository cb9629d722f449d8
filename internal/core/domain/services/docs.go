// Package services contains stateless domain services: geospatial math for
// distances, delivery fees and ETAs, and nearest-driver ranking for dispatch
// offers.
package services
