package stream

import "github.com/google/uuid"

// DefaultSubscriberBuffer events queued per subscriber before new ones are dropped
const DefaultSubscriberBuffer = 16

// Subscriber one open push connection. The event channel is never closed;
// the connection stops reading it when it leaves the registry.
type Subscriber struct {
	id     string
	events chan Event
}

// NewSubscriber creates a subscriber with a bounded event queue.
func NewSubscriber(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Subscriber{
		id:     uuid.NewString(),
		events: make(chan Event, buffer),
	}
}

func (s *Subscriber) ID() string { return s.id }

// Events returns the channel the connection drains.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// deliver queues ev without blocking; false when the queue is full.
func (s *Subscriber) deliver(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}
