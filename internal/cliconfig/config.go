// Package cliconfig holds the CLI-facing configuration for beaconsync:
// defaults, validation, and the flag/env/file precedence machinery.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// Supported frame sources.
const (
	SourceUDP    = "udp"
	SourceSerial = "serial"
	SourceWS     = "ws"
)

// Config holds CLI configuration for beaconsync.
type Config struct {
	Source string

	UDPListen  string
	SerialPort string
	SerialBaud int
	WSURL      string

	WindowSize     int
	ReportInterval time.Duration
	ReportEvents   int

	StateDir string
	Once     bool
	Verbose  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Source:         SourceUDP,
		UDPListen:      ":9102",
		SerialBaud:     115200,
		WindowSize:     50,
		ReportInterval: 10 * time.Second,
		ReportEvents:   256,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceUDP:
		if c.UDPListen == "" {
			return fmt.Errorf("udp-listen is required for the udp source")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("serial-port is required for the serial source")
		}
		if c.SerialBaud <= 0 {
			return fmt.Errorf("serial-baud must be positive")
		}
	case SourceWS:
		if c.WSURL == "" {
			return fmt.Errorf("ws-url is required for the ws source")
		}
	default:
		return fmt.Errorf("unknown source %q (want udp, serial, or ws)", c.Source)
	}

	if c.WindowSize < 2 {
		return fmt.Errorf("window size must be at least 2")
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("report interval must be positive")
	}
	if c.ReportEvents <= 0 {
		return fmt.Errorf("report events must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
