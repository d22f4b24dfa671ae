package events

import "time"

// Kind names an event type within a dotted namespace, e.g. "playback.started".
type Kind string

// Event is implemented by every event in this package via [Base].
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and creation time common to all events. Embed it and
// construct it with [NewBase].
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps a new event base with the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
