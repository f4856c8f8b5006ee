package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Source         string `toml:"source"`
	UDPListen      string `toml:"udp_listen"`
	SerialPort     string `toml:"serial_port"`
	SerialBaud     int    `toml:"serial_baud"`
	WSURL          string `toml:"ws_url"`
	WindowSize     int    `toml:"window_size"`
	ReportInterval string `toml:"report_interval"`
	ReportEvents   int    `toml:"report_events"`
	StateDir       string `toml:"state_dir"`
	Once           *bool  `toml:"once"`
	Verbose        *bool  `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.beaconsync/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".beaconsync", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", fc.Source, &cfg.Source)
	s.setString("udp-listen", fc.UDPListen, &cfg.UDPListen)
	s.setString("serial-port", fc.SerialPort, &cfg.SerialPort)
	s.setString("ws-url", fc.WSURL, &cfg.WSURL)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)

	s.setInt("serial-baud", fc.SerialBaud, &cfg.SerialBaud)
	s.setInt("window", fc.WindowSize, &cfg.WindowSize)
	s.setInt("report-events", fc.ReportEvents, &cfg.ReportEvents)

	if err := s.setDuration("report-interval", fc.ReportInterval, &cfg.ReportInterval); err != nil {
		return err
	}

	s.setBool("once", fc.Once, &cfg.Once)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
