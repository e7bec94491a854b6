// Package relayservice assembles the HTTP surface of the relay: the
// WebSocket endpoint, the status snapshot, and the metrics scrape.
package relayservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/DDmsngr/deepdrift-backend/relayservice/config"
)

// Version is reported on the status endpoint and at startup.
const Version = "4.3.0"

// Wrapper owns the HTTP server and its routes.
type Wrapper struct {
	server *http.Server
	logger zerolog.Logger
}

// New wires the relay's three endpoints into a single HTTP server.
func New(
	cfg *config.Config,
	connManager http.Handler,
	statusHandler http.Handler,
	metricsReg *prometheus.Registry,
	logger zerolog.Logger,
) (*Wrapper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if connManager == nil || statusHandler == nil {
		return nil, fmt.Errorf("handlers cannot be nil")
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", statusHandler)
	mux.Handle("GET /ws", connManager)
	if metricsReg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	}

	return &Wrapper{
		server: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		},
		logger: logger.With().Str("component", "RelayService").Logger(),
	}, nil
}

// Start listens and serves until Shutdown is called or the listener fails.
// The listen error is reported synchronously so a bad port fails fast.
func (w *Wrapper) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.server.Addr, err)
	}
	w.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP listener is active.")

	if err := w.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, waiting for in-flight requests up to the
// context deadline. Live WebSocket sessions end when their connections close.
func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info().Msg("Shutting down HTTP server...")
	if err := w.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	w.logger.Info().Msg("HTTP server shut down.")
	return nil
}
