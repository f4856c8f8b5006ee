package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfigFile(t, `
source = "serial"
serial_port = "/dev/ttyUSB0"
serial_baud = 921600
window_size = 100
report_interval = "30s"
once = true
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Source != "serial" {
		t.Errorf("Source = %q, want serial", fc.Source)
	}
	if fc.SerialPort != "/dev/ttyUSB0" {
		t.Errorf("SerialPort = %q, want /dev/ttyUSB0", fc.SerialPort)
	}
	if fc.SerialBaud != 921600 {
		t.Errorf("SerialBaud = %d, want 921600", fc.SerialBaud)
	}
	if fc.WindowSize != 100 {
		t.Errorf("WindowSize = %d, want 100", fc.WindowSize)
	}
	if fc.ReportInterval != "30s" {
		t.Errorf("ReportInterval = %q, want 30s", fc.ReportInterval)
	}
	if fc.Once == nil || !*fc.Once {
		t.Error("Once not parsed as true")
	}
	if fc.Verbose != nil {
		t.Error("Verbose should be nil when absent")
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("LoadFileConfig() = nil error for missing file")
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := writeConfigFile(t, "source = [broken")
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig() = nil error for invalid TOML")
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultConfig()
	once := true
	fc := FileConfig{
		Source:         "ws",
		WSURL:          "ws://relay:8080/stream",
		WindowSize:     75,
		ReportInterval: "20s",
		Once:           &once,
	}

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}

	if cfg.Source != "ws" {
		t.Errorf("Source = %q, want ws", cfg.Source)
	}
	if cfg.WSURL != "ws://relay:8080/stream" {
		t.Errorf("WSURL = %q", cfg.WSURL)
	}
	if cfg.WindowSize != 75 {
		t.Errorf("WindowSize = %d, want 75", cfg.WindowSize)
	}
	if cfg.ReportInterval != 20*time.Second {
		t.Errorf("ReportInterval = %v, want 20s", cfg.ReportInterval)
	}
	if !cfg.Once {
		t.Error("Once = false, want true")
	}
	// Fields absent from the file keep their defaults.
	if cfg.UDPListen != ":9102" {
		t.Errorf("UDPListen = %q, want default", cfg.UDPListen)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowSize = 30 // pretend --window 30 was passed
	fc := FileConfig{WindowSize: 75, Source: "ws"}

	changed := map[string]bool{"window": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}

	if cfg.WindowSize != 30 {
		t.Errorf("WindowSize = %d, want 30 (flag set)", cfg.WindowSize)
	}
	if cfg.Source != "ws" {
		t.Errorf("Source = %q, want ws (flag not set)", cfg.Source)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{ReportInterval: "soon"}

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Error("ApplyFileConfig() = nil error on bad duration")
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfigFile(t, "")
	if !FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(filepath.Join(t.TempDir(), "nope")) {
		t.Error("FileExists() = true for missing file")
	}
}
