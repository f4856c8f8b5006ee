package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (BEACONSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", os.Getenv("BEACONSYNC_SOURCE"), &cfg.Source)
	s.setString("udp-listen", os.Getenv("BEACONSYNC_UDP_LISTEN"), &cfg.UDPListen)
	s.setString("serial-port", os.Getenv("BEACONSYNC_SERIAL_PORT"), &cfg.SerialPort)
	s.setString("ws-url", os.Getenv("BEACONSYNC_WS_URL"), &cfg.WSURL)
	s.setString("state-dir", os.Getenv("BEACONSYNC_STATE_DIR"), &cfg.StateDir)

	if err := s.setIntFromString("serial-baud", os.Getenv("BEACONSYNC_SERIAL_BAUD"), &cfg.SerialBaud); err != nil {
		return err
	}
	if err := s.setIntFromString("window", os.Getenv("BEACONSYNC_WINDOW"), &cfg.WindowSize); err != nil {
		return err
	}
	if err := s.setIntFromString("report-events", os.Getenv("BEACONSYNC_REPORT_EVENTS"), &cfg.ReportEvents); err != nil {
		return err
	}

	if err := s.setDuration("report-interval", os.Getenv("BEACONSYNC_REPORT_INTERVAL"), &cfg.ReportInterval); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("BEACONSYNC_ONCE"), &cfg.Once)
	s.setBoolFromString("verbose", os.Getenv("BEACONSYNC_VERBOSE"), &cfg.Verbose)

	return nil
}
