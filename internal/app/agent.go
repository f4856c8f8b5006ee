package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/beaconsync/internal/codec"
	"github.com/bft-labs/beaconsync/internal/domain"
	"github.com/bft-labs/beaconsync/internal/drift"
	"github.com/bft-labs/beaconsync/internal/ports"
	"github.com/bft-labs/beaconsync/internal/regress"
)

// AgentConfig contains configuration for the alignment loop.
type AgentConfig struct {
	// WindowSize is the regression window capacity in samples.
	WindowSize int

	// ReportInterval is how often a drift report is produced and the
	// status snapshot persisted.
	ReportInterval time.Duration

	// ReportEvents caps the recent-events buffer the report analyzes.
	ReportEvents int

	// Once makes Run exit after the first session ends instead of
	// reconnecting. Useful for replaying captures.
	Once bool
}

// Agent orchestrates the alignment loop: frames in, fit and drift
// diagnostics out. One session per transport connection; the regression
// window and the recent-events buffer never span sessions.
type Agent struct {
	config    AgentConfig
	source    ports.FrameSource
	clock     ports.Clock
	stateRepo ports.StateRepository
	logger    ports.Logger
	regressor *regress.Regressor
	recent    *recentEvents

	// reportInterval in nanoseconds; atomic so the config watcher can
	// retune it while the loop runs.
	reportInterval atomic.Int64

	mu         sync.RWMutex
	lastReport domain.DriftReport
	hasReport  bool
}

// NewAgent creates a new agent with the given dependencies.
func NewAgent(
	config AgentConfig,
	source ports.FrameSource,
	clock ports.Clock,
	stateRepo ports.StateRepository,
	logger ports.Logger,
) *Agent {
	a := &Agent{
		config:    config,
		source:    source,
		clock:     clock,
		stateRepo: stateRepo,
		logger:    logger,
		regressor: regress.New(config.WindowSize),
		recent:    newRecentEvents(config.ReportEvents),
	}
	a.reportInterval.Store(int64(config.ReportInterval))
	return a
}

// Run executes the alignment loop until the context is canceled. Each
// transport connection is one session; on disconnect the agent emits a
// final report, resets the regression state and reconnects with backoff.
func (a *Agent) Run(ctx context.Context) error {
	back := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := a.runSession(ctx)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case err == nil:
			// Clean disconnect.
			if a.config.Once {
				return nil
			}
			back.Reset()
		default:
			a.logger.Error("session failed", ports.Err(err))
		}

		if err := back.Sleep(ctx); err != nil {
			return err
		}
	}
}

// runSession opens the source and processes frames until disconnect or
// cancellation. Returns nil on clean disconnect (io.EOF from the source).
func (a *Agent) runSession(ctx context.Context) error {
	a.regressor.Reset()
	a.recent.Reset()

	state := domain.State{
		SessionID:        uuid.NewString(),
		SessionStartedAt: time.Now(),
	}
	a.logger.Info("session started", ports.String("session", state.SessionID))

	if err := a.source.Open(ctx); err != nil {
		return err
	}
	defer a.source.Close()

	lastReport := time.Now()

	for {
		frame, err := a.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.logger.Info("session ended",
					ports.String("session", state.SessionID),
					ports.Uint64("frames", state.FramesReceived),
					ports.Uint64("rejected", state.FramesRejected),
				)
				a.report(ctx, &state)
				return nil
			}
			return err
		}

		event, derr := codec.Decode(frame)
		if derr != nil {
			// Malformed frames are dropped and counted, never fatal.
			state.FramesRejected++
			a.logger.Warn("frame rejected",
				ports.Err(derr),
				ports.Int("len", len(frame)),
			)
			continue
		}
		event.ReceiverNanos = a.clock.Nanos()

		a.regressor.AddSample(event.BeaconMicros, event.ReceiverNanos)
		a.recent.Add(event)
		state.FramesReceived++

		if time.Since(lastReport) >= time.Duration(a.reportInterval.Load()) {
			a.report(ctx, &state)
			lastReport = time.Now()
		}
	}
}

// report analyzes the recent events against the current fit, logs the
// result and persists the status snapshot.
func (a *Agent) report(ctx context.Context, state *domain.State) {
	events := a.recent.Snapshot()
	if len(events) == 0 {
		return
	}

	fit := a.regressor.Fit()
	rep := drift.Analyze(events, fit)
	rms := a.regressor.RMSResidualMs()

	a.logger.Info("drift report",
		ports.String("session", state.SessionID),
		ports.Int("events", rep.TotalEvents),
		ports.Int("dropped", rep.DroppedCount),
		ports.Float64("alpha_ns", fit.Alpha),
		ports.Float64("beta", fit.Beta),
		ports.Float64("rms_ms", rms),
		ports.Float64("mean_abs_residual_ms", rep.MeanAbsResidualMs),
		ports.Float64("baseline_offset_ms", rep.BaselineOffsetMs),
		ports.Float64("jitter_avg_ms", rep.RunningJitterAvgMs),
		ports.Float64("interval_ms", rep.MeanIntervalMs),
		ports.Float64("pps", rep.PacketsPerSecond),
		ports.Duration("beacon_span", rep.BeaconSpan),
		ports.Duration("receiver_span", rep.ReceiverSpan),
	)

	state.DroppedCount = rep.DroppedCount
	state.Alpha = fit.Alpha
	state.Beta = fit.Beta
	state.RMSResidualMs = rms
	state.LastReportAt = time.Now()
	if err := a.stateRepo.Save(ctx, *state); err != nil {
		a.logger.Error("failed to save state", ports.Err(err))
	}

	a.mu.Lock()
	a.lastReport = rep
	a.hasReport = true
	a.mu.Unlock()
}

// Fit returns a snapshot of the current fit.
func (a *Agent) Fit() domain.Fit {
	return a.regressor.Fit()
}

// RMSResidualMs returns the current window RMS residual in milliseconds.
func (a *Agent) RMSResidualMs() float64 {
	return a.regressor.RMSResidualMs()
}

// SampleCount returns the current regression window occupancy.
func (a *Agent) SampleCount() int {
	return a.regressor.SampleCount()
}

// LastReport returns the most recent drift report, if one exists.
func (a *Agent) LastReport() (domain.DriftReport, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastReport, a.hasReport
}

// SetWindowSize applies a dynamic window-size change from the config
// watcher.
func (a *Agent) SetWindowSize(n int) {
	a.regressor.SetWindowSize(n)
}

// SetReportInterval applies a dynamic report-interval change from the
// config watcher. Non-positive values are ignored.
func (a *Agent) SetReportInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	a.reportInterval.Store(int64(d))
}
