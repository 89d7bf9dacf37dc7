package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"slices"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/ingmarrr/ws-chat/internal/config"
	"github.com/ingmarrr/ws-chat/internal/core"
)

// ChatHub is the part of core.Hub the transport layer depends on.
type ChatHub interface {
	Serve(ctx context.Context, conn core.Conn) error
	Sessions() int
	Online() []string
}

// WSHandler upgrades HTTP connections and hands them to the hub.
type WSHandler struct {
	hub       ChatHub
	log       *zerolog.Logger
	accept    *websocket.AcceptOptions
	readLimit int64
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub ChatHub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:       hub,
		log:       logger,
		accept:    acceptOptions(cfg.AllowedOrigins),
		readLimit: cfg.MaxMessageBytes,
	}
}

func acceptOptions(origins []string) *websocket.AcceptOptions {
	if slices.Contains(origins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: origins}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Str("remote", r.RemoteAddr).Msg("ws accept error")
		return
	}
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("ws connection accepted")
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	err = h.hub.Serve(r.Context(), newWSConn(conn))

	switch {
	case isExpectedClose(err), errors.Is(err, core.ErrNameTaken), errors.Is(err, core.ErrHubClosed),
		errors.Is(err, core.ErrIdleTimeout), errors.Is(err, context.Canceled):
		h.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("ws connection closed")
	default:
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("ws connection closed with error")
	}
}
