// Package order contains the Order aggregate: the canonical representation of
// a customer order regardless of which channel created it, together with its
// forward-only status state machine and per-edge role authorization.
//
// Orders created by the storefront and orders ingested from external
// platforms flow through the same aggregate, so every order obeys the same
// transition rules. All mutation goes through validated methods; a rejected
// operation leaves the aggregate untouched.
package order
