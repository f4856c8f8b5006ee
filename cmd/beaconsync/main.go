package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	beaconsync "github.com/bft-labs/beaconsync"
	"github.com/bft-labs/beaconsync/internal/cliconfig"
	"github.com/bft-labs/beaconsync/pkg/log"
)

const helpBanner = `
 ███████████  ██████████   █████████     █████████     ███████    ██████   █████
░░███░░░░░███░░███░░░░░█  ███░░░░░███   ███░░░░░███  ███░░░░░███ ░░██████ ░░███
 ░███    ░███ ░███  █ ░  ░███    ░███  ███     ░░░  ███     ░░███ ░███░███ ░███
 ░██████████  ░██████    ░███████████ ░███         ░███      ░███ ░███░░███░███
 ░███░░░░░███ ░███░░█    ░███░░░░░███ ░███         ░███      ░███ ░███ ░░██████
 ░███    ░███ ░███ ░   █ ░███    ░███ ░░███     ███░░███     ███  ░███  ░░█████
 ███████████  ██████████ █████   █████ ░░█████████  ░░░███████░   █████  ░░█████
░░░░░░░░░░░  ░░░░░░░░░░ ░░░░░   ░░░░░   ░░░░░░░░░     ░░░░░░░    ░░░░░    ░░░░░
`

const helpDescription = `
Align BLE beacon timestamps with your receiver's clock in real time.

Highlights:
  - Fits a sliding-window affine mapping between beacon and receiver clocks.
  - Reads frames over UDP, a serial bridge, or a WebSocket relay.
  - Reports drift, jitter, and dropped-packet diagnostics as it runs.
  - Configure via file, environment, or flags; settings reload live.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  beaconsync --source udp --udp-listen :9102
  beaconsync --source serial --serial-port /dev/ttyUSB0
  beaconsync --config $HOME/.beaconsync/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "beaconsync",
		Short:   "Align BLE beacon timestamps with your receiver's clock",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.beaconsync/config.toml),
			// then apply env and flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment variables (BEACONSYNC_*) override file config but
			// are overridden by flags (checked via changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Verbose {
				zl = zl.Level(zerolog.DebugLevel)
			} else {
				zl = zl.Level(zerolog.InfoLevel)
			}

			zl.Info().Interface("config", cfg).Msg("configuration")

			opts := []beaconsync.Option{
				beaconsync.WithLogger(log.NewZerologAdapterWithLogger(zl)),
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				opts = append(opts, beaconsync.WithConfigWatcher(cfgFile))
			}

			b, err := beaconsync.New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("create beaconsync: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := b.Start(ctx); err != nil {
				return fmt.Errorf("start beaconsync: %w", err)
			}

			// Poll for completion so once mode and crashes exit promptly.
			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := b.Status()
						if status == beaconsync.StateStopped || status == beaconsync.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case <-sigCh:
				zl.Info().Msg("received signal, stopping...")
			case <-doneCh:
				if b.Status() == beaconsync.StateCrashed {
					zl.Error().Msg("beaconsync crashed")
				}
			}

			if err := b.Stop(); err != nil && err != beaconsync.ErrNotRunning {
				return fmt.Errorf("stop beaconsync: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.beaconsync/config.toml)")
	root.Flags().StringVar(&cfg.Source, "source", cfg.Source, "frame source: udp, serial, or ws")

	root.Flags().StringVar(&cfg.UDPListen, "udp-listen", cfg.UDPListen, "UDP listen address for beacon frames")
	root.Flags().StringVar(&cfg.SerialPort, "serial-port", cfg.SerialPort, "serial device of the beacon bridge (e.g. /dev/ttyUSB0)")
	root.Flags().IntVar(&cfg.SerialBaud, "serial-baud", cfg.SerialBaud, "serial baud rate")
	root.Flags().StringVar(&cfg.WSURL, "ws-url", cfg.WSURL, "WebSocket relay URL (e.g. ws://host:port/stream)")

	root.Flags().IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "sliding regression window size in events")
	root.Flags().DurationVar(&cfg.ReportInterval, "report-interval", cfg.ReportInterval, "interval between drift reports")
	root.Flags().IntVar(&cfg.ReportEvents, "report-events", cfg.ReportEvents, "recent events retained for drift analysis")

	root.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for status.json")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "process one session and exit")
	root.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("beaconsync")
		os.Exit(1)
	}
}
