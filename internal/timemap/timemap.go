// Package timemap applies a fit snapshot to convert beacon timestamps into
// the receiver timeline. It has no reference to the regressor, so a mapping
// can be replayed against historical events long after the fit has moved on.
package timemap

import (
	"errors"
	"math"

	"github.com/bft-labs/beaconsync/internal/domain"
)

// ErrMappingOverflow is returned when the mapped value does not fit in an
// int64 nanosecond. Realistic skew sits near 1.0, so hitting this indicates
// a corrupted fit or caller bug, not a plausible clock state.
var ErrMappingOverflow = errors.New("timemap: mapped time overflows int64")

// BeaconToReceiverNs maps a beacon timestamp onto the receiver timeline in
// nanoseconds, rounding to the nearest integer.
func BeaconToReceiverNs(fit domain.Fit, beaconMicros uint64) (int64, error) {
	v := math.Round(fit.Predict(float64(beaconMicros) * 1e3))
	// math.MaxInt64 is not exactly representable as float64; compare
	// against the nearest representable bounds.
	if v >= math.MaxInt64 || v < math.MinInt64 || math.IsNaN(v) {
		return 0, ErrMappingOverflow
	}
	return int64(v), nil
}

// BeaconToReceiverMs is BeaconToReceiverNs converted to milliseconds.
func BeaconToReceiverMs(fit domain.Fit, beaconMicros uint64) (float64, error) {
	ns, err := BeaconToReceiverNs(fit, beaconMicros)
	if err != nil {
		return 0, err
	}
	return float64(ns) / 1e6, nil
}

// ResidualMs returns the absolute difference in milliseconds between an
// observed receiver stamp and the value the fit predicts for the
// corresponding beacon timestamp. A quick "does this one sample agree with
// the model" check, independent of whether the sample is in the window.
func ResidualMs(fit domain.Fit, beaconMicros, receiverNanos uint64) float64 {
	predicted := fit.Predict(float64(beaconMicros) * 1e3)
	return math.Abs(float64(receiverNanos)-predicted) / 1e6
}
