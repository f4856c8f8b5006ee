package app

import "github.com/bft-labs/beaconsync/internal/domain"

// recentEvents is a bounded FIFO of the newest decoded events, kept so the
// periodic drift report has a batch to analyze. Only the agent goroutine
// touches it; readers get copies via Snapshot.
type recentEvents struct {
	capacity int
	events   []domain.Event
}

func newRecentEvents(capacity int) *recentEvents {
	if capacity < 1 {
		capacity = 1
	}
	return &recentEvents{
		capacity: capacity,
		events:   make([]domain.Event, 0, capacity),
	}
}

// Add appends an event, evicting the oldest when full.
func (r *recentEvents) Add(e domain.Event) {
	if len(r.events) == r.capacity {
		copy(r.events, r.events[1:])
		r.events[len(r.events)-1] = e
		return
	}
	r.events = append(r.events, e)
}

// Snapshot returns a copy of the buffered events in arrival order.
func (r *recentEvents) Snapshot() []domain.Event {
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of buffered events.
func (r *recentEvents) Len() int {
	return len(r.events)
}

// Reset discards all buffered events. Called at session boundaries so a
// report never mixes events from two connections.
func (r *recentEvents) Reset() {
	r.events = r.events[:0]
}
