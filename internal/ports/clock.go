package ports

// Clock is the receiver-side time source used to stamp frame arrivals.
// Implementations must be monotonic: readings never go backwards and are
// immune to wall-clock step changes, otherwise the regression would absorb
// clock adjustments as phantom drift.
type Clock interface {
	// Nanos returns the current reading in nanoseconds from an arbitrary
	// but fixed origin.
	Nanos() uint64
}
