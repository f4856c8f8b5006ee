// Package beaconsync provides an embeddable agent that aligns BLE beacon
// timestamps with the receiver's local clock.
//
// Beacons stamp advertisements with their own microsecond counter; the
// receiver stamps each arrival with its monotonic nanosecond clock. The
// agent fits an affine mapping between the two clocks over a sliding
// window of recent events and reports drift diagnostics as it runs.
//
// # Basic Usage
//
//	cfg := beaconsync.DefaultConfig()
//	cfg.Source = "udp"
//	cfg.UDPListen = ":9102"
//
//	agent, err := beaconsync.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := agent.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := agent.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// While running, [Beaconsync.Fit] and [Beaconsync.LastReport] expose the
// current clock mapping and drift diagnostics; both are safe to call from
// any goroutine.
package beaconsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	clockAdapter "github.com/bft-labs/beaconsync/internal/adapters/clock"
	"github.com/bft-labs/beaconsync/internal/adapters/fs"
	serialAdapter "github.com/bft-labs/beaconsync/internal/adapters/serial"
	udpAdapter "github.com/bft-labs/beaconsync/internal/adapters/udp"
	wsAdapter "github.com/bft-labs/beaconsync/internal/adapters/ws"
	"github.com/bft-labs/beaconsync/internal/app"
	"github.com/bft-labs/beaconsync/internal/cliconfig"
	"github.com/bft-labs/beaconsync/internal/domain"
	"github.com/bft-labs/beaconsync/internal/ports"
)

// Config holds the configuration for the alignment agent.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Fit is the affine mapping from beacon-clock nanoseconds to
// receiver-clock nanoseconds.
type Fit = domain.Fit

// DriftReport carries the drift diagnostics computed over recent events.
type DriftReport = domain.DriftReport

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Sentinel errors returned by lifecycle operations.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)

// Beaconsync is a clock-alignment agent that can be embedded in other
// applications. Use New() to create an instance, then Start() to begin
// consuming beacon frames.
type Beaconsync struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	agent     *app.Agent
	source    ports.FrameSource
	stateRepo ports.StateRepository
	logger    ports.Logger
	watcher   *app.ConfigWatcher

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Beaconsync instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Beaconsync, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// An injected source makes the source-selection fields moot, so
	// validate only when the config has to pick one itself.
	if o.source == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else if err := validateCore(cfg); err != nil {
		return nil, err
	}

	logger := o.logger

	// Create event emitter wrapper
	var emitter eventEmitterWrapper
	if o.eventHandler != nil {
		emitter = eventEmitterWrapper{handler: o.eventHandler}
	}

	lifecycle := app.NewLifecycle(logger, &emitter)

	source := o.source
	if source == nil {
		var err error
		source, err = newSource(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	clk := o.clock
	if clk == nil {
		clk = clockAdapter.NewMonotonic()
	}

	stateRepo := fs.NewStateFileRepository(cfg.StateDir)

	agentCfg := app.AgentConfig{
		WindowSize:     cfg.WindowSize,
		ReportInterval: cfg.ReportInterval,
		ReportEvents:   cfg.ReportEvents,
		Once:           cfg.Once,
	}
	agent := app.NewAgent(agentCfg, source, clk, stateRepo, logger)

	var watcher *app.ConfigWatcher
	if o.configFile != "" {
		watcher = app.NewConfigWatcher(o.configFile, loadDynamicConfig, agent, logger)
	}

	return &Beaconsync{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		agent:     agent,
		source:    source,
		stateRepo: stateRepo,
		logger:    logger,
		watcher:   watcher,
	}, nil
}

// Start begins frame consumption in the background.
// Returns immediately after starting the agent goroutine.
// Returns an error if already running.
// The provided context is used for the lifetime of the agent.
func (b *Beaconsync) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := b.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.ctx = runCtx
	b.cancel = cancel
	b.lifecycle.SetCancel(cancel)

	if b.watcher != nil {
		b.lifecycle.AddWorker()
		go func() {
			defer b.lifecycle.WorkerDone()
			b.watcher.Run(runCtx)
		}()
	}

	b.lifecycle.AddWorker()
	go func() {
		defer b.lifecycle.WorkerDone()

		if err := b.lifecycle.TransitionTo(app.StateRunning, "agent starting"); err != nil {
			b.logger.Error("failed to transition to running", ports.Err(err))
			return
		}

		err := b.agent.Run(runCtx)

		if err != nil && err != context.Canceled {
			b.logger.Error("agent error", ports.Err(err))
			cancel()
			_ = b.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		} else if b.config.Once {
			// Once mode finished on its own; wind the machine down so
			// Status() reflects completion.
			cancel()
			if b.lifecycle.State() == app.StateRunning {
				_ = b.lifecycle.TransitionTo(app.StateStopping, "once mode complete")
				_ = b.lifecycle.TransitionTo(app.StateStopped, "once mode complete")
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the agent.
// Persists the final state snapshot before returning.
// Waits up to ShutdownTimeout before forcing shutdown.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (b *Beaconsync) Stop() error {
	b.mu.Lock()

	if !b.lifecycle.CanStop() {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := b.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		b.mu.Unlock()
		return err
	}

	if b.cancel != nil {
		b.cancel()
	}

	b.mu.Unlock()

	err := b.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = b.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (b *Beaconsync) Status() State {
	return convertState(b.lifecycle.State())
}

// Fit returns the current clock mapping. Before enough samples arrive it
// is the identity mapping.
func (b *Beaconsync) Fit() Fit {
	return b.agent.Fit()
}

// RMSResidualMs returns the root-mean-square residual of the current fit
// in milliseconds.
func (b *Beaconsync) RMSResidualMs() float64 {
	return b.agent.RMSResidualMs()
}

// SampleCount returns the number of events currently in the regression
// window.
func (b *Beaconsync) SampleCount() int {
	return b.agent.SampleCount()
}

// LastReport returns the most recent drift report, if one has been
// produced this session.
func (b *Beaconsync) LastReport() (DriftReport, bool) {
	return b.agent.LastReport()
}

// newSource builds the frame source named by cfg.Source.
func newSource(cfg Config, logger ports.Logger) (ports.FrameSource, error) {
	switch cfg.Source {
	case cliconfig.SourceUDP:
		return udpAdapter.NewSource(cfg.UDPListen, logger), nil
	case cliconfig.SourceSerial:
		return serialAdapter.NewSource(cfg.SerialPort, cfg.SerialBaud, logger), nil
	case cliconfig.SourceWS:
		return wsAdapter.NewSource(cfg.WSURL, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidConfig, cfg.Source)
	}
}

// validateCore checks the fields that matter even with an injected
// source.
func validateCore(cfg Config) error {
	if cfg.WindowSize < 2 {
		return fmt.Errorf("%w: window size must be at least 2", domain.ErrInvalidConfig)
	}
	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("%w: report interval must be positive", domain.ErrInvalidConfig)
	}
	if cfg.ReportEvents <= 0 {
		return fmt.Errorf("%w: report events must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// loadDynamicConfig parses the reloadable subset of the config file.
func loadDynamicConfig(path string) (app.DynamicConfig, error) {
	fc, err := cliconfig.LoadFileConfig(path)
	if err != nil {
		return app.DynamicConfig{}, err
	}

	var dyn app.DynamicConfig
	dyn.WindowSize = fc.WindowSize
	if fc.ReportInterval != "" {
		d, err := time.ParseDuration(fc.ReportInterval)
		if err != nil {
			return app.DynamicConfig{}, fmt.Errorf("parse report_interval: %w", err)
		}
		dyn.ReportInterval = d
	}
	return dyn, nil
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
