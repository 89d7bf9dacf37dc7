package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ingmarrr/ws-chat/internal/app"
	"github.com/ingmarrr/ws-chat/internal/config"
	"github.com/ingmarrr/ws-chat/internal/log"
)

func serveCmd(root *rootFlags) *cobra.Command {
	var overrides config.Config
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides.LogLevel = root.logLevel
			overrides.LogFormat = root.logFormat
			return runServe(cmd.Context(), root.configPath, overrides, noMetrics)
		},
	}

	f := cmd.Flags()
	f.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	f.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	f.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	f.IntVar(&overrides.SubscriberBuffer, "subscriber-buffer", 0, "per-connection event queue depth")
	f.Int64Var(&overrides.MaxMessageBytes, "max-message-bytes", 0, "maximum inbound frame size")
	f.DurationVar(&overrides.IdleTimeout, "idle-timeout", 0, "close joined sessions silent for this long")
	f.IntVar(&overrides.RateLimit, "rate-limit", 0, "messages per minute per session")
	f.StringSliceVar(&overrides.AllowedOrigins, "allowed-origin", nil, "origin pattern accepted for upgrades (repeatable, * for any)")
	f.BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func runServe(ctx context.Context, configPath string, overrides config.Config, noMetrics bool) error {
	bootLog := log.New("info", "console")

	cfg, path, err := config.Load(bootLog, configPath)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(overrides)
	if noMetrics {
		cfg.MetricsEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting ws-chat server")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	if err := app.New(&cfg, logger).Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Dur("uptime", time.Since(started)).Msg("server stopped")
	return nil
}
