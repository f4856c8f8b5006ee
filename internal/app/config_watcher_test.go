package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func watcherFixture(t *testing.T) (string, *Agent, *ConfigWatcher) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("window_size = 50\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	agent := NewAgent(testAgentConfig(), &scriptedSource{}, &scriptedClock{}, &memStateRepo{}, &mockLogger{})

	// Minimal parse for the fixture: a bare window_size line.
	load := func(p string) (DynamicConfig, error) {
		b, err := os.ReadFile(p)
		if err != nil {
			return DynamicConfig{}, err
		}
		var dyn DynamicConfig
		if _, err := fmt.Sscanf(string(b), "window_size = %d", &dyn.WindowSize); err != nil {
			return DynamicConfig{}, err
		}
		dyn.ReportInterval = 5 * time.Second
		return dyn, nil
	}

	return path, agent, NewConfigWatcher(path, load, agent, &mockLogger{})
}

func TestConfigWatcher_AppliesChanges(t *testing.T) {
	path, agent, w := watcherFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Give the watcher time to establish the directory watch.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(path, []byte("window_size = 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if agent.regressor.WindowSize() == 12 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if got := agent.regressor.WindowSize(); got != 12 {
		t.Errorf("window size = %d, want 12 after reload", got)
	}
	if got := agent.reportInterval.Load(); got != int64(5*time.Second) {
		t.Errorf("report interval = %d, want 5s after reload", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestConfigWatcher_EmptyPathReturnsImmediately(t *testing.T) {
	agent := NewAgent(testAgentConfig(), &scriptedSource{}, &scriptedClock{}, &memStateRepo{}, &mockLogger{})
	w := NewConfigWatcher("", nil, agent, &mockLogger{})

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return for an empty path")
	}
}

func TestConfigWatcher_BadReloadKeepsSettings(t *testing.T) {
	path, agent, w := watcherFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(200 * time.Millisecond)

	// Unparseable content must not disturb the running configuration.
	if err := os.WriteFile(path, []byte("garbage\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)

	if got := agent.regressor.WindowSize(); got != 50 {
		t.Errorf("window size = %d, want 50 after failed reload", got)
	}
}
