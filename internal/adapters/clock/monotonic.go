// Package clock provides the monotonic receiver clock used to stamp frame
// arrivals.
package clock

import "time"

// Monotonic implements ports.Clock on top of the runtime's monotonic clock.
// Readings are nanoseconds since the instant the Monotonic was created, so
// they never go backwards and are unaffected by wall-clock adjustments.
type Monotonic struct {
	origin time.Time
}

// NewMonotonic creates a Monotonic with its origin at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{origin: time.Now()}
}

// Nanos returns nanoseconds elapsed since the origin.
func (m *Monotonic) Nanos() uint64 {
	return uint64(time.Since(m.origin))
}
