// Package push implements the wake-up collaborator: best-effort FCM pushes
// to disconnected clients' devices. Push payloads never carry message
// content, only a neutral title/body plus the routing fields the client app
// needs to open the right chat.
package push

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

// TokenSource resolves and retires device push tokens.
type TokenSource interface {
	PushToken(ctx context.Context, uid string) (string, error)
	DeletePushToken(ctx context.Context, uid string) error
}

// messagingClient is the slice of the FCM SDK the notifier needs.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier implements relay.PushNotifier against Firebase Cloud Messaging.
type FCMNotifier struct {
	client messagingClient
	tokens TokenSource
	logger zerolog.Logger
}

// NewFCMNotifier creates a notifier. Both dependencies must be non-nil; a
// relay running without Firebase credentials uses Noop instead.
func NewFCMNotifier(client messagingClient, tokens TokenSource, logger zerolog.Logger) (*FCMNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("messaging client cannot be nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}
	return &FCMNotifier{
		client: client,
		tokens: tokens,
		logger: logger.With().Str("component", "FCMNotifier").Logger(),
	}, nil
}

// Notify sends a high-priority wake push to targetUID's device. Missing
// token is not an error: the device simply has no push registration. A
// token FCM reports as unregistered is deleted so it is not retried.
func (n *FCMNotifier) Notify(ctx context.Context, targetUID, fromUID, kind string) error {
	token, err := n.tokens.PushToken(ctx, targetUID)
	if errors.Is(err, relay.ErrNotFound) || errors.Is(err, relay.ErrStoreUnavailable) {
		n.logger.Debug().Str("target", targetUID).Msg("No FCM token, skipping push")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch push token: %w", err)
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: titleFor(kind, fromUID),
			Body:  bodyFor(kind),
		},
		Data: map[string]string{
			"from_uid": fromUID,
			"type":     kind,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Priority:              messaging.PriorityMax,
				DefaultVibrateTimings: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true},
			},
		},
		Token: token,
	}

	if _, err := n.client.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) {
			n.logger.Warn().Str("target", targetUID).Msg("FCM token unregistered, removing")
			if delErr := n.tokens.DeletePushToken(ctx, targetUID); delErr != nil {
				n.logger.Error().Err(delErr).Str("target", targetUID).Msg("Failed to remove stale FCM token")
			}
			return nil
		}
		return fmt.Errorf("failed to send push: %w", err)
	}

	n.logger.Info().Str("target", targetUID).Str("kind", kind).Msg("Push sent")
	return nil
}

func titleFor(kind, fromUID string) string {
	switch kind {
	case relay.KindNewMessage:
		return "DDChat: " + fromUID
	case relay.KindMessageDeleted:
		return "Message deleted"
	case relay.KindMessageEdited:
		return "Message edited"
	case relay.KindMessageReaction:
		return "New reaction"
	default:
		return "DDChat"
	}
}

// bodyFor returns the neutral stub for a push body. Bodies never include
// message text, encrypted or otherwise.
func bodyFor(kind string) string {
	switch kind {
	case relay.KindNewMessage:
		return "New encrypted message"
	case relay.KindMessageDeleted:
		return "A message was deleted"
	case relay.KindMessageEdited:
		return "A message was edited"
	case relay.KindMessageReaction:
		return "New reaction on your message"
	default:
		return "New event"
	}
}
