package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionManager_RequiresHandler(t *testing.T) {
	_, err := NewConnectionManager(nil, zerolog.Nop())
	require.Error(t, err)
}

func TestConnectionManager_UpgradesAndRunsSession(t *testing.T) {
	received := make(chan string, 1)
	handler := func(ctx context.Context, conn *websocket.Conn) {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(payload)
	}

	cm, err := NewConnectionManager(handler, zerolog.Nop())
	require.NoError(t, err)

	server := httptest.NewServer(cm)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "Failed to dial test WebSocket server")
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	select {
	case got := <-received:
		assert.Equal(t, `{"type":"ping"}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Session handler never received the frame")
	}
}

func TestConnectionManager_RejectsPlainHTTP(t *testing.T) {
	cm, err := NewConnectionManager(func(context.Context, *websocket.Conn) {}, zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	cm.ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 400, rec.Code)
}
