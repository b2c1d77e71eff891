package ecs

// EventType identifies lifecycle events.
type EventType string

const (
	EventEntityCreated   EventType = "entity_created"
	EventEntityDestroyed EventType = "entity_destroyed"
	EventJointCreated    EventType = "joint_created"
	EventJointRemoved    EventType = "joint_removed"
)

// Event is a generic lifecycle event payload.
type Event struct {
	Type   EventType
	Entity Entity
	Data   any
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
