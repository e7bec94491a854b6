package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ConnectionCounter exposes the live connection count.
type ConnectionCounter interface {
	Count() int
}

// StatusResponse is the liveness/connectivity snapshot served at the root.
// Informational only; nothing here mutates state.
type StatusResponse struct {
	Status      string   `json:"status"`
	Version     string   `json:"version"`
	Firebase    string   `json:"firebase"`
	Redis       string   `json:"redis"`
	UsersOnline int      `json:"users_online"`
	Features    []string `json:"features"`
}

var features = []string{
	"single_offline_storage", "explicit_request_offline_messages",
	"delete_message", "edit_message", "message_reaction",
	"forward_message", "read_receipt", "delivery_receipt",
	"voice_messages", "photo_messages", "file_transfer",
	"server_ack", "rate_limiting", "fcm_token_cleanup",
}

// StatusHandler serves the status snapshot.
type StatusHandler struct {
	version    string
	conns      ConnectionCounter
	storePing  func(ctx context.Context) error // nil when the store is disabled
	pushActive bool
	logger     zerolog.Logger
}

// NewStatusHandler creates the handler. storePing may be nil when no
// durable backend is configured.
func NewStatusHandler(
	version string,
	conns ConnectionCounter,
	storePing func(ctx context.Context) error,
	pushActive bool,
	logger zerolog.Logger,
) *StatusHandler {
	return &StatusHandler{
		version:    version,
		conns:      conns,
		storePing:  storePing,
		pushActive: pushActive,
		logger:     logger.With().Str("component", "StatusHandler").Logger(),
	}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:      "ONLINE",
		Version:     h.version,
		Firebase:    "error/disabled",
		Redis:       "disconnected",
		UsersOnline: h.conns.Count(),
		Features:    features,
	}
	if h.pushActive {
		resp.Firebase = "active"
	}
	if h.storePing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.storePing(ctx); err == nil {
			resp.Redis = "connected"
		} else {
			h.logger.Warn().Err(err).Msg("Status probe: store unreachable")
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
