package events

import "time"

// Event is anything placed on the event bus. Services emit events when a
// catalog feed sync finishes, when a product or knowledge document has been
// indexed, and when a session is deleted; the audit trail tails all of them.
type Event interface {
	// EventType returns the event code, e.g. "CATALOG_SYNCED".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain-struct Event emitters construct inline. Type carries
// the event code and emitters stamp OccurredAt themselves so the consumer
// side sees the true occurrence time, not its own receive time.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
