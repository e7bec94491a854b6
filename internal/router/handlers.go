package router

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

// handleInit binds an identifier to the session and registers the channel.
// No offline-queue flush happens here: the client pulls explicitly via
// request_offline_messages once its decryption keys are loaded, otherwise
// ciphertext would arrive before the keys and be dropped.
func (r *Router) handleInit(_ context.Context, s *Session, f *relay.Frame) error {
	candidate := strings.TrimSpace(f.MyUID)
	if !relay.IsValidUID(candidate) {
		r.metrics.Error("invalid_uid")
		return s.reply(relay.ErrorReply{Type: relay.TypeError, Message: "my_uid must be a 6-digit number"})
	}

	s.uid = candidate
	r.registry.Register(candidate, s)
	r.logger.Info().Str("uid", candidate).Int("total", r.registry.Count()).Msg("Connected")

	return s.reply(relay.UIDAssigned{Type: relay.TypeUIDAssigned, MyUID: candidate})
}

// handleRequestOfflineMessages drains the (requester, target) queue and
// pushes each stored envelope verbatim, in FIFO order. The record is only
// deleted after every envelope went out; a failed send leaves the whole
// record intact so a later pull redelivers it (at-least-once).
func (r *Router) handleRequestOfflineMessages(ctx context.Context, s *Session, f *relay.Frame) error {
	target := f.TargetUID
	if target == "" {
		target = f.FromUID
	}
	if target == "" {
		return nil
	}

	payloads, err := r.store.Drain(ctx, s.uid, target)
	if errors.Is(err, relay.ErrStoreUnavailable) {
		return nil
	}
	if err != nil {
		r.metrics.Error("storage")
		return err
	}
	if len(payloads) == 0 {
		r.logger.Debug().Str("uid", s.uid).Str("from", target).Msg("No offline messages")
		return nil
	}

	r.logger.Info().Str("uid", s.uid).Str("from", target).Int("count", len(payloads)).Msg("Delivering offline messages")
	for _, payload := range payloads {
		if err := s.Send(payload); err != nil {
			r.logger.Warn().Err(err).Str("uid", s.uid).Msg("Offline delivery interrupted, keeping queue for retry")
			r.metrics.Error("transport")
			return nil
		}
	}

	if err := r.store.CommitDrain(ctx, s.uid, target); err != nil {
		// The record survives; the next pull redelivers it.
		r.metrics.Error("storage")
		return err
	}
	return nil
}

func (r *Router) handleRegisterFCMToken(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.FCMToken == "" {
		return nil
	}
	if err := r.store.SetPushToken(ctx, s.uid, f.FCMToken); err != nil {
		if errors.Is(err, relay.ErrStoreUnavailable) {
			return nil
		}
		r.metrics.Error("storage")
		return err
	}
	r.logger.Info().Str("uid", s.uid).Msg("FCM token registered")
	return s.reply(relay.StatusReply{Type: relay.TypeFCMTokenRegistered, Status: "success"})
}

func (r *Router) handleRegisterPublicKey(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.X25519Key == "" || f.Ed25519Key == "" {
		return nil
	}
	if err := r.store.SetPublicKeys(ctx, s.uid, f.X25519Key, f.Ed25519Key); err != nil {
		if errors.Is(err, relay.ErrStoreUnavailable) {
			return nil
		}
		r.metrics.Error("storage")
		return err
	}
	r.logger.Info().Str("uid", s.uid).Msg("Public keys registered")
	return s.reply(relay.StatusReply{Type: relay.TypePublicKeyRegistered, Status: "success"})
}

func (r *Router) handleRequestPublicKey(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.TargetUID == "" {
		return nil
	}
	x25519Key, ed25519Key, err := r.store.PublicKeys(ctx, f.TargetUID)
	if errors.Is(err, relay.ErrNotFound) {
		return s.reply(relay.PublicKeyResponse{
			Type:      relay.TypePublicKeyResponse,
			TargetUID: f.TargetUID,
			Error:     "keys_not_found",
		})
	}
	if errors.Is(err, relay.ErrStoreUnavailable) {
		return nil
	}
	if err != nil {
		r.metrics.Error("storage")
		return err
	}
	return s.reply(relay.PublicKeyResponse{
		Type:       relay.TypePublicKeyResponse,
		TargetUID:  f.TargetUID,
		X25519Key:  x25519Key,
		Ed25519Key: ed25519Key,
	})
}

func (r *Router) handleMessage(ctx context.Context, s *Session, f *relay.Frame) error {
	if !r.limiter.Admit(s.uid, r.now()) {
		r.metrics.RateLimited()
		return s.reply(relay.ErrorReply{Type: relay.TypeError, Message: "Rate limit exceeded"})
	}
	if f.TargetUID == "" || f.EncryptedText == "" || f.ID == "" {
		return nil
	}

	messageType := f.MessageType
	if messageType == "" {
		messageType = "text"
	}
	env := &relay.Envelope{
		Type:          relay.TypeMessage,
		FromUID:       s.uid,
		Time:          r.now().UnixMilli(),
		ID:            f.ID,
		EncryptedText: f.EncryptedText,
		Signature:     f.Signature,
		ReplyToID:     f.ReplyToID,
		MessageType:   messageType,
		MediaData:     f.MediaData,
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		MimeType:      f.MimeType,
	}

	delivered := r.deliverOrStore(ctx, s.uid, f.TargetUID, relay.KindNewMessage, env)
	r.metrics.MessageSent(delivered)
	r.logger.Info().Str("id", f.ID).Bool("online", delivered).Msg("Message routed")

	return s.reply(relay.ServerAck{Type: relay.TypeServerAck, ID: f.ID, DeliveredOnline: delivered})
}

func (r *Router) handleDeleteMessage(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.TargetUID == "" || f.MessageID == "" {
		return nil
	}
	env := &relay.Envelope{
		Type:      relay.TypeMessageDeleted,
		FromUID:   s.uid,
		Time:      r.now().UnixMilli(),
		MessageID: f.MessageID,
	}
	r.deliverOrStore(ctx, s.uid, f.TargetUID, relay.KindMessageDeleted, env)
	return nil
}

func (r *Router) handleEditMessage(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.TargetUID == "" || f.MessageID == "" || f.NewEncryptedText == "" {
		return nil
	}
	env := &relay.Envelope{
		Type:             relay.TypeMessageEdited,
		FromUID:          s.uid,
		Time:             r.now().UnixMilli(),
		MessageID:        f.MessageID,
		NewEncryptedText: f.NewEncryptedText,
		NewSignature:     f.NewSignature,
	}
	r.deliverOrStore(ctx, s.uid, f.TargetUID, relay.KindMessageEdited, env)
	return nil
}

// handleMessageReaction delivers directly when the recipient is online and
// otherwise only fires a push. Reactions are transient: they are never
// persisted to the offline queue, even when a direct send fails.
func (r *Router) handleMessageReaction(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.TargetUID == "" || f.MessageID == "" || f.Emoji == "" || f.Action == "" {
		return nil
	}
	env := &relay.Envelope{
		Type:      relay.TypeMessageReaction,
		FromUID:   s.uid,
		Time:      r.now().UnixMilli(),
		MessageID: f.MessageID,
		Emoji:     f.Emoji,
		Action:    f.Action,
	}

	if sender, ok := r.registry.Lookup(f.TargetUID); ok {
		payload, err := json.Marshal(env)
		if err != nil {
			return err
		}
		if err := sender.Send(payload); err != nil {
			r.logger.Warn().Err(err).Str("target", f.TargetUID).Msg("Reaction delivery failed")
			r.metrics.Error("transport")
		}
		return nil
	}

	if err := r.notifier.Notify(ctx, f.TargetUID, s.uid, relay.KindMessageReaction); err != nil {
		r.logger.Error().Err(err).Str("target", f.TargetUID).Msg("Push notification failed")
		r.metrics.Error("push")
	}
	return nil
}

func (r *Router) handleForwardMessage(ctx context.Context, s *Session, f *relay.Frame) error {
	if f.TargetUID == "" || f.OriginalMessageID == "" || f.EncryptedText == "" || f.ID == "" {
		return nil
	}
	env := &relay.Envelope{
		Type:              relay.TypeMessage,
		FromUID:           s.uid,
		Time:              r.now().UnixMilli(),
		ID:                f.ID,
		EncryptedText:     f.EncryptedText,
		Signature:         f.Signature,
		ForwardedFrom:     f.ForwardedFrom,
		OriginalMessageID: f.OriginalMessageID,
	}

	delivered := r.deliverOrStore(ctx, s.uid, f.TargetUID, relay.KindNewMessage, env)
	r.metrics.MessageSent(delivered)
	r.logger.Info().Str("id", f.ID).Bool("online", delivered).Msg("Forward routed")

	return s.reply(relay.ServerAck{Type: relay.TypeServerAck, ID: f.ID, DeliveredOnline: delivered})
}

func (r *Router) handleReadReceipt(_ context.Context, s *Session, f *relay.Frame) error {
	return r.deliverIfOnline(s, f, relay.TypeReadReceipt)
}

func (r *Router) handleDeliveryReceipt(_ context.Context, s *Session, f *relay.Frame) error {
	return r.deliverIfOnline(s, f, relay.TypeDeliveryReceipt)
}

// deliverIfOnline handles the receipt types: delivered only when the
// recipient is currently connected, silently dropped otherwise — no
// storage, no push.
func (r *Router) deliverIfOnline(s *Session, f *relay.Frame, envType string) error {
	if f.TargetUID == "" || f.MessageID == "" {
		return nil
	}
	sender, ok := r.registry.Lookup(f.TargetUID)
	if !ok {
		return nil
	}
	env := &relay.Envelope{
		Type:      envType,
		FromUID:   s.uid,
		Time:      r.now().UnixMilli(),
		MessageID: f.MessageID,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := sender.Send(payload); err != nil {
		r.logger.Warn().Err(err).Str("target", f.TargetUID).Msg("Receipt delivery failed")
		r.metrics.Error("transport")
	}
	return nil
}

func (r *Router) handleTypingIndicator(_ context.Context, s *Session, f *relay.Frame) error {
	if f.TargetUID == "" {
		return nil
	}
	sender, ok := r.registry.Lookup(f.TargetUID)
	if !ok {
		return nil
	}
	typing := f.Typing
	env := &relay.Envelope{
		Type:    relay.TypeTypingIndicator,
		FromUID: s.uid,
		Typing:  &typing,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := sender.Send(payload); err != nil {
		r.logger.Warn().Err(err).Str("target", f.TargetUID).Msg("Typing indicator delivery failed")
		r.metrics.Error("transport")
	}
	return nil
}

func (r *Router) handlePing(_ context.Context, s *Session, _ *relay.Frame) error {
	return s.reply(relay.Pong{Type: relay.TypePong})
}
