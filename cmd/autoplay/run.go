package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dshills/autoplay/internal/app"
)

// hostOptions are the per-command settings for the terminal host.
type hostOptions struct {
	metricsAddr string
	playPath    string
	playFile    string
	exitOnStop  bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	var opts hostOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive recorder",
		Long: `Start the terminal host. With the default bindings F12 toggles
recording, F11 toggles playback, F10 pauses time and Ctrl-C quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd, g, opts)
		},
	}
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&opts.playPath, "play-path", "", "Session file played by the play binding")
	return cmd
}

func newPlayCmd(g *globalOptions) *cobra.Command {
	opts := hostOptions{exitOnStop: true}
	cmd := &cobra.Command{
		Use:     "play FILE",
		Short:   "Play a session file in the terminal host",
		Example: `  autoplay play sessions/1700000000000-demo.gsi`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.playFile = args[0]
			return runHost(cmd, g, opts)
		},
	}
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func runHost(cmd *cobra.Command, g *globalOptions, opts hostOptions) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.playPath != "" {
		cfg.Session.PlayPath = opts.playPath
	}

	// The screen owns the terminal, so logs only go to a configured file.
	logger, closeLog, err := app.NewLogger(cfg.Logging, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	application, err := app.New(app.Options{
		Config:          cfg,
		ConfigPath:      g.configPath,
		Logger:          logger,
		Registerer:      reg,
		PlayFile:        opts.playFile,
		ExitWhenStopped: opts.exitOnStop,
	})
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv := app.NewMetricsServer(cfg.Metrics.Addr, reg, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				logger.Error().Err(err).Msg("Failed to stop metrics server")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("version", version).
		Str("config", g.configPath).
		Msg("Starting autoplay")
	return application.Run(ctx)
}
