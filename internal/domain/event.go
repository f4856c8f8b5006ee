package domain

// Event is one decoded beacon frame, stamped with the local arrival time.
// Events are immutable once stamped; they are either fed to the regressor
// or kept in a bounded recent-events buffer for drift analysis.
type Event struct {
	// Sequence is the beacon-assigned frame counter (wraps at 2^32)
	Sequence uint32

	// BeaconMicros is the beacon timestamp in microseconds since the
	// beacon's own boot epoch
	BeaconMicros uint64

	// ReceiverNanos is the local monotonic clock reading at the moment
	// the frame arrived. It is not part of the wire format; the caller
	// stamps it immediately on receipt.
	ReceiverNanos uint64
}

// BeaconNanos returns the beacon timestamp converted to nanoseconds,
// the unit the regression operates in.
func (e Event) BeaconNanos() float64 {
	return float64(e.BeaconMicros) * 1e3
}

// Fit is an affine mapping from the beacon timeline onto the receiver
// timeline: receiverNanos ≈ Alpha + Beta*beaconNanos. A Fit is a value;
// readers always work on snapshots, never on regressor-internal state.
type Fit struct {
	// Alpha is the offset in nanoseconds: the predicted receiver-clock
	// value at beacon time zero
	Alpha float64

	// Beta is the dimensionless skew: receiver-clock rate over
	// beacon-clock rate
	Beta float64
}

// IdentityFit maps the beacon timeline 1:1 onto the receiver timeline.
// It is the fit in effect before two usable samples have been seen.
func IdentityFit() Fit {
	return Fit{Alpha: 0.0, Beta: 1.0}
}

// Predict returns the receiver-clock nanoseconds the fit expects for the
// given beacon time in nanoseconds.
func (f Fit) Predict(beaconNanos float64) float64 {
	return f.Alpha + f.Beta*beaconNanos
}
