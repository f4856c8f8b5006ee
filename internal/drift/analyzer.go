// Package drift computes sync-quality diagnostics over a batch of events.
//
// Analyze is a pure function of its inputs: a list of events in arrival
// order (not necessarily contiguous in sequence number) and a fit snapshot.
// Nothing here touches regressor state.
package drift

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/bft-labs/beaconsync/internal/domain"
)

// Analyze walks the events once for sequence accounting, then derives
// residual, offset/jitter and rate statistics. Sequence wraparound at the
// 32-bit boundary (0xFFFFFFFF -> 0) counts as consecutive.
func Analyze(events []domain.Event, fit domain.Fit) domain.DriftReport {
	if len(events) == 0 {
		return domain.DriftReport{}
	}

	rep := domain.DriftReport{TotalEvents: len(events)}

	// Residuals against the regression fit, over every event.
	absResiduals := make([]float64, len(events))
	for i, e := range events {
		r := (float64(e.ReceiverNanos) - fit.Predict(e.BeaconNanos())) / 1e6
		absResiduals[i] = math.Abs(r)
		if i == len(events)-1 {
			rep.LatestResidualMs = r
		}
	}
	rep.MeanAbsResidualMs = stat.Mean(absResiduals, nil)

	// Sequence walk: an event is valid if it directly follows its
	// predecessor. uint32 arithmetic makes the wraparound case fall out.
	valid := make([]domain.Event, 0, len(events))
	var intervalsUs []float64
	for i, e := range events {
		if i == 0 {
			valid = append(valid, e)
			continue
		}
		prev := events[i-1]
		if e.Sequence == prev.Sequence+1 {
			valid = append(valid, e)
			intervalsUs = append(intervalsUs, float64(e.BeaconMicros-prev.BeaconMicros))
		}
	}
	rep.ValidEvents = len(valid)
	rep.DroppedCount = rep.TotalEvents - rep.ValidEvents

	// Baseline offset and jitter, independent of the regression fit:
	// per-event timing offset relative to the first valid event, with the
	// median as the outlier-resistant baseline.
	if len(valid) > 0 {
		first := valid[0]
		offsets := make([]float64, len(valid))
		for i, e := range valid {
			dRecv := float64(e.ReceiverNanos) - float64(first.ReceiverNanos)
			dBeacon := e.BeaconNanos() - first.BeaconNanos()
			offsets[i] = (dRecv - dBeacon) / 1e6
		}
		rep.BaselineOffsetMs = median(offsets)

		jitter := make([]float64, len(offsets))
		for i, off := range offsets {
			jitter[i] = math.Abs(off - rep.BaselineOffsetMs)
		}
		rep.RunningJitterAvgMs = stat.Mean(jitter, nil)
		rep.LatestJitterMs = jitter[len(jitter)-1]
	}

	// Transmission rate from beacon-clock inter-arrival intervals.
	if len(intervalsUs) > 0 {
		meanUs := stat.Mean(intervalsUs, nil)
		rep.MeanIntervalMs = meanUs / 1e3
		if meanUs > 0 {
			rep.PacketsPerSecond = 1e6 / meanUs
		}
	}

	first, last := events[0], events[len(events)-1]
	rep.BeaconSpan = time.Duration(last.BeaconMicros-first.BeaconMicros) * time.Microsecond
	rep.ReceiverSpan = time.Duration(last.ReceiverNanos - first.ReceiverNanos)

	return rep
}

// median returns the middle value of xs, averaging the two middle values
// for even counts. xs is not modified.
func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
