package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmrelay/internal/config"
	"github.com/vovakirdan/dmrelay/internal/core"
)

// Hub is the part of core.Hub the transport drives.
type Hub interface {
	RegisterClient(c *core.Client)
	UnregisterClient(c *core.Client)
	Submit(c *core.Client, cmd *core.Command) bool
}

// NewServer builds an HTTP server with the health route and the WebSocket endpoint.
func NewServer(hub Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(hub, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewHandler serves the WebSocket upgrade on / and /ws from the plain mux, since
// gin's response writer cannot be hijacked after the handshake status is written.
// The remaining routes go through gin.
func NewHandler(hub Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	ws := NewWSHandler(hub, cfg, logger)

	mux := stdhttp.NewServeMux()
	mux.Handle("/health", newAPIRouter(logger))
	mux.Handle("/ws", ws)
	mux.Handle("/{$}", ws)
	return mux
}

func newAPIRouter(logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
