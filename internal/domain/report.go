package domain

import "time"

// DriftReport summarizes sync quality over a batch of events against a fit
// snapshot. It is always recomputed on demand and never stored between
// batches.
type DriftReport struct {
	// TotalEvents is the number of events analyzed
	TotalEvents int

	// ValidEvents is the number of events whose sequence followed the
	// previous valid event's sequence (with 32-bit wraparound)
	ValidEvents int

	// DroppedCount is TotalEvents - ValidEvents
	DroppedCount int

	// MeanAbsResidualMs is the mean absolute regression residual in
	// milliseconds across all events
	MeanAbsResidualMs float64

	// LatestResidualMs is the signed residual of the most recent event
	LatestResidualMs float64

	// BaselineOffsetMs is the median per-event timing offset relative to
	// the first valid event. Median rather than mean so occasional
	// large-latency samples do not move the baseline.
	BaselineOffsetMs float64

	// RunningJitterAvgMs is the mean absolute deviation of per-event
	// offsets from BaselineOffsetMs
	RunningJitterAvgMs float64

	// LatestJitterMs is the jitter of the most recent valid event
	LatestJitterMs float64

	// MeanIntervalMs is the mean beacon-clock inter-arrival interval
	// across valid consecutive events
	MeanIntervalMs float64

	// PacketsPerSecond is the transmission rate implied by MeanIntervalMs
	PacketsPerSecond float64

	// BeaconSpan is the beacon-clock time elapsed between the first and
	// last event
	BeaconSpan time.Duration

	// ReceiverSpan is the receiver-clock time elapsed between the first
	// and last event. Its divergence from BeaconSpan over a long batch is
	// the cumulative effect of skew.
	ReceiverSpan time.Duration
}
