package realtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SessionHandler runs one upgraded connection to completion. The router's
// HandleConnection satisfies this through a trivial adapter in the wiring.
type SessionHandler func(ctx context.Context, conn *websocket.Conn)

// ConnectionManager upgrades inbound HTTP requests to WebSocket sessions
// and hands each one to the session handler. The HTTP server already runs
// one goroutine per request; the session occupies it for its lifetime.
type ConnectionManager struct {
	upgrader websocket.Upgrader
	handle   SessionHandler
	logger   zerolog.Logger
}

// NewConnectionManager creates a manager delegating sessions to handle.
func NewConnectionManager(handle SessionHandler, logger zerolog.Logger) (*ConnectionManager, error) {
	if handle == nil {
		return nil, fmt.Errorf("session handler cannot be nil")
	}
	return &ConnectionManager{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Clients are mobile apps, not browsers; origin is not meaningful.
				return true
			},
		},
		handle: handle,
		logger: logger.With().Str("component", "ConnectionManager").Logger(),
	}, nil
}

// ServeHTTP upgrades the request and runs the session until it ends.
func (cm *ConnectionManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cm.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			cm.logger.Debug().Err(err).Msg("Error closing connection")
		}
	}()

	cm.handle(r.Context(), conn)
}
