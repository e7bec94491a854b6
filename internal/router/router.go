// Package router implements the dispatch state machine at the heart of the
// relay: it owns one session per connection, authenticates it, interprets
// typed frames, and orchestrates the registry, rate limiter, offline store
// and push notifier to realize delivery semantics.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

// Registry indexes live connections by identifier.
type Registry interface {
	Register(uid string, sender relay.Sender)
	Unregister(uid string, sender relay.Sender) bool
	Lookup(uid string) (relay.Sender, bool)
	Count() int
}

// RateLimiter is the per-identifier admission check.
type RateLimiter interface {
	Admit(uid string, now time.Time) bool
	Clear(uid string)
}

type handlerFunc func(ctx context.Context, s *Session, f *relay.Frame) error

// Router composes the relay's collaborators. It is shared by all sessions
// and holds no per-connection state itself.
type Router struct {
	registry Registry
	limiter  RateLimiter
	store    relay.OfflineStore
	notifier relay.PushNotifier
	metrics  Metrics
	logger   zerolog.Logger

	handlers map[string]handlerFunc
	now      func() time.Time
}

// New wires up a router. All collaborators are required; pass the disabled
// store / no-op notifier / NopMetrics for degraded modes rather than nil.
func New(
	registry Registry,
	limiter RateLimiter,
	store relay.OfflineStore,
	notifier relay.PushNotifier,
	metrics Metrics,
	logger zerolog.Logger,
) (*Router, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("offline store cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("push notifier cannot be nil")
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}

	r := &Router{
		registry: registry,
		limiter:  limiter,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.With().Str("component", "Router").Logger(),
		now:      time.Now,
	}

	r.handlers = map[string]handlerFunc{
		relay.TypeRequestOfflineMessages: r.handleRequestOfflineMessages,
		relay.TypeRegisterFCMToken:       r.handleRegisterFCMToken,
		relay.TypeRegisterPublicKey:      r.handleRegisterPublicKey,
		relay.TypeRequestPublicKey:       r.handleRequestPublicKey,
		relay.TypeMessage:                r.handleMessage,
		relay.TypeDeleteMessage:          r.handleDeleteMessage,
		relay.TypeEditMessage:            r.handleEditMessage,
		relay.TypeMessageReaction:        r.handleMessageReaction,
		relay.TypeForwardMessage:         r.handleForwardMessage,
		relay.TypeReadReceipt:            r.handleReadReceipt,
		relay.TypeDeliveryReceipt:        r.handleDeliveryReceipt,
		relay.TypeTypingIndicator:        r.handleTypingIndicator,
		relay.TypePing:                   r.handlePing,
	}
	return r, nil
}

// HandleConnection runs one session to completion: reads frames until the
// connection closes or a protocol decode fails, then tears the session
// down. Other sessions are unaffected either way.
func (r *Router) HandleConnection(ctx context.Context, conn Conn) {
	s := newSession(conn, r.logger)
	start := r.now()
	r.metrics.ConnectionOpened()
	defer func() {
		r.teardown(s)
		r.metrics.ConnectionClosed(r.now().Sub(start))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f relay.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			r.logger.Error().Err(err).Str("uid", s.uid).Msg("Protocol decode failed, closing session")
			r.metrics.Error("decode")
			return
		}

		r.dispatch(ctx, s, &f)
	}
}

// dispatch routes one inbound frame. Between I/O points this runs as an
// uninterrupted unit with respect to the session's own state.
func (r *Router) dispatch(ctx context.Context, s *Session, f *relay.Frame) {
	stop := r.metrics.DispatchStarted()
	defer stop()

	if f.Type == relay.TypeInit {
		if err := r.handleInit(ctx, s, f); err != nil {
			r.logger.Error().Err(err).Msg("init failed")
		}
		return
	}

	if s.uid == "" {
		r.metrics.Error("not_initialized")
		_ = s.reply(relay.ErrorReply{Type: relay.TypeError, Message: "Not initialized. Send init first."})
		return
	}

	handler, ok := r.handlers[f.Type]
	if !ok {
		r.logger.Warn().Str("type", f.Type).Str("uid", s.uid).Msg("Unknown message type")
		r.metrics.Error("unknown_type")
		return
	}

	if err := handler(ctx, s, f); err != nil {
		r.logger.Error().Err(err).Str("type", f.Type).Str("uid", s.uid).Msg("Handler error")
	}
}

// teardown deregisters an authenticated session. The unregister is guarded
// inside the registry, so a superseded session cannot erase its successor.
func (r *Router) teardown(s *Session) {
	if s.uid == "" {
		return
	}
	r.registry.Unregister(s.uid, s)
	r.limiter.Clear(s.uid)
	r.logger.Info().Str("uid", s.uid).Int("total", r.registry.Count()).Msg("Disconnected")
}

// deliverOrStore attempts direct delivery to targetUID and, failing that,
// persists the envelope and fires a push. The returned boolean is the
// authoritative delivered_online signal. A send failure on a registered
// channel is treated the same as the recipient being offline.
func (r *Router) deliverOrStore(ctx context.Context, fromUID, targetUID, kind string, env *relay.Envelope) bool {
	payload, err := json.Marshal(env)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal envelope")
		return false
	}

	if sender, ok := r.registry.Lookup(targetUID); ok {
		sendErr := sender.Send(payload)
		if sendErr == nil {
			return true
		}
		r.logger.Warn().Err(sendErr).Str("target", targetUID).Msg("Direct delivery failed, treating recipient as offline")
		r.metrics.Error("transport")
	}

	if err := r.store.Append(ctx, targetUID, fromUID, payload); err != nil {
		if errors.Is(err, relay.ErrStoreUnavailable) {
			r.logger.Debug().Str("target", targetUID).Msg("Offline store disabled, message dropped")
		} else {
			r.logger.Error().Err(err).Str("target", targetUID).Msg("Failed to store offline message")
			r.metrics.Error("storage")
		}
	}

	if err := r.notifier.Notify(ctx, targetUID, fromUID, kind); err != nil {
		r.logger.Error().Err(err).Str("target", targetUID).Msg("Push notification failed")
		r.metrics.Error("push")
	}

	return false
}
