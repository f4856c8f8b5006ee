// Package regress maintains the sliding-window least-squares fit of the
// beacon timeline onto the receiver timeline.
package regress

import (
	"math"
	"sync"

	"github.com/bft-labs/beaconsync/internal/domain"
)

// DefaultWindowSize is the number of samples the fit is computed over when
// no explicit size is configured. Tens of samples keep the per-sample
// recompute cheap while spanning enough wall time to observe skew.
const DefaultWindowSize = 50

// minFitSamples is the smallest window that defines a line.
const minFitSamples = 2

type sample struct {
	beaconNanos   float64
	receiverNanos float64
}

// Regressor incrementally maintains an affine fit
// receiverNanos ≈ alpha + beta*beaconNanos over the most recent windowSize
// samples. One producer calls AddSample from the frame-arrival path; any
// number of readers call Fit, RMSResidualMs and SampleCount concurrently.
// A single mutex makes every mutation atomic with respect to every read, so
// a reader can never observe a fit computed from a partially updated window.
type Regressor struct {
	mu         sync.Mutex
	windowSize int
	window     []sample
	fit        domain.Fit
	rmsMs      float64
	fitted     bool
}

// New creates a Regressor over the given window size. Sizes below 2 fall
// back to DefaultWindowSize, since a smaller window can never produce a fit.
func New(windowSize int) *Regressor {
	if windowSize < minFitSamples {
		windowSize = DefaultWindowSize
	}
	return &Regressor{
		windowSize: windowSize,
		window:     make([]sample, 0, windowSize),
		fit:        domain.IdentityFit(),
	}
}

// AddSample converts beaconMicros to nanoseconds, appends the sample,
// evicts from the head while over capacity, and recomputes the fit over the
// current window. The previous fit is retained when the window holds fewer
// than two samples or the beacon timestamps carry no variance.
func (r *Regressor) AddSample(beaconMicros, receiverNanos uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := sample{
		beaconNanos:   float64(beaconMicros) * 1e3,
		receiverNanos: float64(receiverNanos),
	}
	if len(r.window) == r.windowSize {
		copy(r.window, r.window[1:])
		r.window[len(r.window)-1] = s
	} else {
		r.window = append(r.window, s)
	}
	r.recompute()
}

// recompute runs the two-pass least squares over the window and refreshes
// the cached RMS residual. Caller holds r.mu.
//
// Recomputing from scratch on every sample is O(windowSize) but the window
// is tens of samples; a Welford-style running-sums variant would be O(1)
// and is a valid drop-in if this ever shows up in a profile.
func (r *Regressor) recompute() {
	n := len(r.window)
	if n < minFitSamples {
		return
	}

	var meanX, meanY float64
	for _, s := range r.window {
		meanX += s.beaconNanos
		meanY += s.receiverNanos
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxx, sxy float64
	for _, s := range r.window {
		dx := s.beaconNanos - meanX
		sxx += dx * dx
		sxy += dx * (s.receiverNanos - meanY)
	}
	if sxx == 0 {
		// All samples share one beacon timestamp; the line is undefined.
		// Keep the previous fit and let the window refill with usable data.
		r.refreshRMS()
		return
	}

	beta := sxy / sxx
	r.fit = domain.Fit{Alpha: meanY - beta*meanX, Beta: beta}
	r.fitted = true
	r.refreshRMS()
}

// refreshRMS recomputes the window RMS residual against the current fit,
// in milliseconds. Caller holds r.mu.
func (r *Regressor) refreshRMS() {
	if !r.fitted || len(r.window) == 0 {
		r.rmsMs = 0.0
		return
	}
	var sum float64
	for _, s := range r.window {
		d := s.receiverNanos - r.fit.Predict(s.beaconNanos)
		sum += d * d
	}
	r.rmsMs = math.Sqrt(sum/float64(len(r.window))) / 1e6
}

// Fit returns an immutable snapshot of the current fit. Identity
// {alpha 0, beta 1} until two usable samples have been seen.
func (r *Regressor) Fit() domain.Fit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fit
}

// RMSResidualMs returns the root-mean-square residual of the current window
// against the current fit, in milliseconds. 0.0 before any fit exists.
func (r *Regressor) RMSResidualMs() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rmsMs
}

// SampleCount returns the current window occupancy.
func (r *Regressor) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.window)
}

// WindowSize returns the configured window capacity.
func (r *Regressor) WindowSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.windowSize
}

// Reset clears the window and restores the identity fit. Must be called on
// every disconnect/reconnect boundary: samples from different sessions have
// unrelated beacon epochs and mixing them silently corrupts the fit.
func (r *Regressor) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.window = r.window[:0]
	r.fit = domain.IdentityFit()
	r.rmsMs = 0.0
	r.fitted = false
}

// SetWindowSize changes the window capacity, evicting the oldest samples if
// the window shrinks, and recomputes the fit. Sizes below 2 are ignored.
func (r *Regressor) SetWindowSize(n int) {
	if n < minFitSamples {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == r.windowSize {
		return
	}
	if excess := len(r.window) - n; excess > 0 {
		r.window = append(r.window[:0], r.window[excess:]...)
	}
	r.windowSize = n
	r.recompute()
}
