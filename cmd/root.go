package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trackpad/internal/config"
	"trackpad/internal/input"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

type rootOptions struct {
	logLevel    string
	noTray      bool
	noAPI       bool
	noFirewall  bool
	idleTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "trackpad",
		Short: "Gesture server: turns phone trackpad gestures into desktop input",
		Long: "trackpad announces itself on the LAN, accepts gesture clients over TCP and " +
			"maps each gesture to a keyboard shortcut, scroll or script on this computer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			return runService(cmd.Context(), cfg, input.NewInjector(), slog.Default())
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.noTray, "no-tray", false, "do not show the tray icon")
	flags.BoolVar(&opts.noAPI, "no-api", false, "disable the HTTP status and WebSocket endpoint")
	flags.BoolVar(&opts.noFirewall, "no-firewall", false, "do not create inbound firewall rules (Windows)")
	flags.DurationVar(&opts.idleTimeout, "idle-timeout", 0, "close gesture connections idle for this long, e.g. 10m (0 keeps them open)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newDiscoverCmd(),
		newSendCmd(),
		newAutostartCmd(),
	)

	return rootCmd
}

func (o *rootOptions) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.noTray {
		cfg.TrayEnabled = false
	}
	if o.noAPI {
		cfg.APIEnabled = false
	}
	if o.noFirewall {
		cfg.FirewallRule = false
	}
	cfg.IdleTimeout = o.idleTimeout
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
