package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ingmarrr/ws-chat/internal/config"
	"github.com/ingmarrr/ws-chat/internal/core"
	"github.com/ingmarrr/ws-chat/internal/metrics"
	transporthttp "github.com/ingmarrr/ws-chat/internal/transport/http"
)

// App wires the chat core to the HTTP transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	metrics         *metrics.Collector
	log             *zerolog.Logger
}

// New constructs the application from a validated configuration.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	var (
		busOpts        []core.BusOption
		observer       core.Observer
		collector      *metrics.Collector
		metricsHandler stdhttp.Handler
	)
	if cfg.MetricsEnabled {
		collector = metrics.New(metrics.DefaultNamespace)
		busOpts = append(busOpts, core.WithDropHandler(collector.EventDropped))
		observer = collector
		metricsHandler = collector.Handler()
	}

	hubLog := logger.With().Str("component", "hub").Logger()
	hub := core.NewHub(
		core.NewRegistry(),
		core.NewBus(cfg.SubscriberBuffer, busOpts...),
		&hubLog,
		core.Options{
			IdleTimeout: cfg.IdleTimeout,
			RateLimit:   cfg.RateLimit,
			Observer:    observer,
		},
	)

	return &App{
		server:          transporthttp.NewServer(hub, metricsHandler, cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		metrics:         collector,
		log:             logger,
	}
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	// Upgraded connections are hijacked, so the HTTP server does not wait for them.
	a.log.Info().Msg("shutting down http server")
	httpErr := a.server.Shutdown(shutdownCtx)

	a.log.Info().Int("sessions", a.hub.Sessions()).Msg("closing chat sessions")
	hubErr := a.hub.Shutdown(shutdownCtx)

	if err := errors.Join(httpErr, hubErr); err != nil {
		return err
	}
	return <-serverErr
}
