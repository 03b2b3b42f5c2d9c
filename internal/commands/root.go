// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/marko-gacesa/netquake/internal/config"
)

// app holds what every command needs after the configuration is loaded.
type app struct {
	cfg config.Config
	log *slog.Logger
}

// NewRootCommand returns the netquake command with all subcommands.
func NewRootCommand(version string) *cobra.Command {
	a := &app{cfg: config.Default(), log: slog.Default()}

	var (
		configPath string
		logLevel   string
		logFormat  string
	)

	root := &cobra.Command{
		Use:           "netquake",
		Short:         "NetQuake protocol client and test server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				a.cfg = cfg
			}

			if cmd.Flags().Changed("log-level") {
				a.cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				a.cfg.Log.Format = logFormat
			}

			if err := a.cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(cmd.ErrOrStderr(), a.cfg.Log)
			if err != nil {
				return err
			}

			a.log = log
			slog.SetDefault(log)

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML)")
	root.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(
		newConnectCommand(a),
		newQueryCommand(a),
		newServeCommand(a),
		newVersionCommand(version),
	)

	return root
}

// override sets the configuration value from the flag if the flag was given.
func override[T any](cmd *cobra.Command, flag string, dst *T, value T) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}

func newLogger(w io.Writer, cfg config.Log) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, options)), nil
	}

	return slog.New(slog.NewTextHandler(w, options)), nil
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "netquake %s\n", version)
			return err
		},
	}
}
