package cliconfig

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source != SourceUDP {
		t.Errorf("Source = %q, want %q", cfg.Source, SourceUDP)
	}
	if cfg.UDPListen != ":9102" {
		t.Errorf("UDPListen = %q, want :9102", cfg.UDPListen)
	}
	if cfg.SerialBaud != 115200 {
		t.Errorf("SerialBaud = %d, want 115200", cfg.SerialBaud)
	}
	if cfg.WindowSize != 50 {
		t.Errorf("WindowSize = %d, want 50", cfg.WindowSize)
	}
	if cfg.ReportInterval != 10*time.Second {
		t.Errorf("ReportInterval = %v, want 10s", cfg.ReportInterval)
	}
	if cfg.ReportEvents != 256 {
		t.Errorf("ReportEvents = %d, want 256", cfg.ReportEvents)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return DefaultConfig()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"unknown source", func(c *Config) { c.Source = "carrier-pigeon" }, "unknown source"},
		{"udp without listen", func(c *Config) { c.UDPListen = "" }, "udp-listen is required"},
		{
			"serial without port",
			func(c *Config) { c.Source = SourceSerial },
			"serial-port is required",
		},
		{
			"serial with bad baud",
			func(c *Config) { c.Source = SourceSerial; c.SerialPort = "/dev/ttyUSB0"; c.SerialBaud = 0 },
			"serial-baud must be positive",
		},
		{
			"serial fully specified",
			func(c *Config) { c.Source = SourceSerial; c.SerialPort = "/dev/ttyUSB0" },
			"",
		},
		{
			"ws without url",
			func(c *Config) { c.Source = SourceWS },
			"ws-url is required",
		},
		{
			"ws fully specified",
			func(c *Config) { c.Source = SourceWS; c.WSURL = "ws://localhost:8080/stream" },
			"",
		},
		{"window too small", func(c *Config) { c.WindowSize = 1 }, "window size"},
		{"zero report interval", func(c *Config) { c.ReportInterval = 0 }, "report interval"},
		{"zero report events", func(c *Config) { c.ReportEvents = 0 }, "report events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSetter_RespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	changed := map[string]bool{"window": true}
	s := newConfigSetter(changed)

	// A changed flag wins over a later value.
	s.setInt("window", 99, &cfg.WindowSize)
	if cfg.WindowSize != 50 {
		t.Errorf("WindowSize = %d, want 50 (flag was set)", cfg.WindowSize)
	}

	// An unchanged flag takes the value.
	s.setInt("report-events", 128, &cfg.ReportEvents)
	if cfg.ReportEvents != 128 {
		t.Errorf("ReportEvents = %d, want 128", cfg.ReportEvents)
	}

	// Empty or non-positive values never overwrite.
	s.setString("udp-listen", "", &cfg.UDPListen)
	if cfg.UDPListen != ":9102" {
		t.Errorf("UDPListen = %q, want :9102", cfg.UDPListen)
	}
	s.setInt("report-events", 0, &cfg.ReportEvents)
	if cfg.ReportEvents != 128 {
		t.Errorf("ReportEvents = %d, want 128 after zero value", cfg.ReportEvents)
	}
}

func TestConfigSetter_Duration(t *testing.T) {
	cfg := DefaultConfig()
	s := newConfigSetter(map[string]bool{})

	if err := s.setDuration("report-interval", "30s", &cfg.ReportInterval); err != nil {
		t.Fatalf("setDuration() error = %v", err)
	}
	if cfg.ReportInterval != 30*time.Second {
		t.Errorf("ReportInterval = %v, want 30s", cfg.ReportInterval)
	}

	if err := s.setDuration("report-interval", "not-a-duration", &cfg.ReportInterval); err == nil {
		t.Error("setDuration() = nil error on garbage input")
	}
}
