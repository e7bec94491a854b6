package router

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Conn is the duplex channel a session runs over. *websocket.Conn satisfies
// it; tests substitute scripted connections.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is the per-connection state: the channel handle and, once the
// client has sent a valid init, the bound identifier. A session is owned
// exclusively by its connection's goroutine; only Send may be called from
// other sessions (via the registry), which is why writes are serialized
// behind a mutex — gorilla/websocket allows a single concurrent writer.
type Session struct {
	conn    Conn
	id      string // correlation id for logs, assigned at creation
	uid     string // empty until authenticated
	writeMu sync.Mutex
	logger  zerolog.Logger
}

func newSession(conn Conn, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		conn:   conn,
		id:     id,
		logger: logger.With().Str("session_id", id).Logger(),
	}
}

// Send pushes one serialized frame to the peer. Implements relay.Sender.
func (s *Session) Send(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// reply marshals v and sends it to this session's own peer. A failed reply
// is logged but never tears the session down; the read loop notices a dead
// connection on its own.
func (s *Session) reply(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.Send(payload); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send reply")
	}
	return nil
}
