// Package dispatch contains the driver assignment model: the durable record
// of which driver won the offer race for an order.
package dispatch
