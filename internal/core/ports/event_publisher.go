package ports

import (
	"foodcourt/internal/realtime"
)

// EventPublisher pushes realtime events to connected dashboard, kitchen,
// driver and customer clients. Command handlers publish only after the
// corresponding state change is committed, so clients never observe an event
// for state that was rolled back.
type EventPublisher interface {
	// Publish fans the event out to every connection matching its target.
	// It never blocks on slow consumers.
	Publish(event realtime.Event)
}
