package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/beaconsync/internal/ports"
)

// DynamicConfig is the subset of settings that can change while the agent
// runs. Everything else requires a restart.
type DynamicConfig struct {
	WindowSize     int
	ReportInterval time.Duration
}

// ConfigWatcher monitors the TOML config file via fsnotify and applies
// dynamic settings to a running agent. Editors replace files rather than
// writing in place, so both Write and Create events count as changes, and
// changes are debounced to coalesce the burst a single save produces.
type ConfigWatcher struct {
	path   string
	load   func(path string) (DynamicConfig, error)
	agent  *Agent
	logger ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewConfigWatcher creates a watcher over the given config file. load
// parses the file into the dynamic subset; it is supplied by the config
// layer so this package stays free of file-format concerns.
func NewConfigWatcher(path string, load func(string) (DynamicConfig, error), agent *Agent, logger ports.Logger) *ConfigWatcher {
	return &ConfigWatcher{
		path:   path,
		load:   load,
		agent:  agent,
		logger: logger,
	}
}

// Run watches the config file's directory until the context is canceled.
func (w *ConfigWatcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("config watcher: create failed", ports.Err(err))
		return
	}
	defer watcher.Close()

	// Watch the directory, not the file: rename-and-replace saves would
	// otherwise detach the watch.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Error("config watcher: watch failed",
			ports.Err(err),
			ports.String("dir", filepath.Dir(w.path)),
		)
		return
	}

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceApply(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher: error", ports.Err(err))
		}
	}
}

func (w *ConfigWatcher) debounceApply(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(delay, w.apply)
}

func (w *ConfigWatcher) apply() {
	dyn, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("config watcher: reload failed", ports.Err(err))
		return
	}

	if dyn.WindowSize >= 2 {
		w.agent.SetWindowSize(dyn.WindowSize)
	}
	w.agent.SetReportInterval(dyn.ReportInterval)

	w.logger.Info("config reloaded",
		ports.Int("window_size", dyn.WindowSize),
		ports.Duration("report_interval", dyn.ReportInterval),
	)
}
