package http

import (
	_ "embed"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ingmarrr/ws-chat/internal/config"
)

//go:embed static/index.html
var indexPage []byte

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Sessions int      `json:"sessions"`
	Online   []string `json:"online"`
}

// NewServer builds the HTTP server. metricsHandler may be nil, in which case
// /metrics is not mounted.
func NewServer(hub ChatHub, metricsHandler stdhttp.Handler, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/", indexHandler)
	router.GET("/health", healthHandler)
	router.GET("/stats", statsHandler(hub))
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// gin's writer refuses to hijack after the 101 status line is written,
	// so the upgrade endpoint sits beside the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

func indexHandler(c *gin.Context) {
	c.Data(stdhttp.StatusOK, "text/html; charset=utf-8", indexPage)
}

func statsHandler(hub ChatHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		online := hub.Online()
		if online == nil {
			online = []string{}
		}
		c.JSON(stdhttp.StatusOK, StatsResponse{
			Sessions: hub.Sessions(),
			Online:   online,
		})
	}
}
