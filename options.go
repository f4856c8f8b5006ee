package beaconsync

import (
	"github.com/bft-labs/beaconsync/internal/ports"
	"github.com/bft-labs/beaconsync/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// FrameSource delivers raw beacon frames to the agent.
// Implement it to feed the agent from a custom transport or a capture.
type FrameSource = ports.FrameSource

// Clock supplies receiver-side monotonic timestamps.
type Clock = ports.Clock

// State represents the lifecycle state of a Beaconsync instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives notifications about agent lifecycle changes.
// Callbacks run synchronously from agent goroutines and should return
// quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
}

// Option configures optional behavior of Beaconsync.
type Option func(*options)

// options holds the optional configuration for a Beaconsync instance.
type options struct {
	logger       ports.Logger
	source       ports.FrameSource
	clock        ports.Clock
	eventHandler EventHandler
	configFile   string
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFrameSource injects a frame source, bypassing the transport named
// by Config.Source. Useful for tests and captures.
func WithFrameSource(source FrameSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithClock injects a receiver clock. If not provided, a monotonic clock
// anchored at process start is used.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithEventHandler sets a handler for lifecycle events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithConfigWatcher enables live reload of dynamic settings (window
// size, report interval) from the given TOML config file.
func WithConfigWatcher(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}
