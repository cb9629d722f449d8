// Package errs provides the standardized error types used across foodcourt.
//
// Every error type follows the same pattern:
//   - a sentinel error variable (e.g. ErrObjectNotFound) used with errors.Is
//   - a struct type carrying the error details
//   - constructor functions with and without an underlying cause
//   - Error() for formatting and Unwrap() for classification
//
// Domain packages define their own business sentinels (invalid transition,
// order already assigned, malformed payload, ...) and use these types for
// the generic validation failures underneath them. Keeping one shape for
// all errors lets HTTP and websocket adapters map failures to status codes
// with a single errors.Is ladder.
package errs
