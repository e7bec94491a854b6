package relay

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned by every OfflineStore operation when the
// durable backend is not configured or not reachable. Callers treat it as
// the degraded online-only mode, never as a session-fatal condition.
var ErrStoreUnavailable = errors.New("offline store unavailable")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Sender is one half of a live duplex channel: the ability to push a single
// serialized frame to the connected peer. Implementations must be safe for
// concurrent use, since any session may deliver to any other.
type Sender interface {
	Send(payload []byte) error
}

// OfflineStore is the durable collaborator backing store-and-forward
// delivery plus the small key/token records.
//
// The offline queue is keyed by (recipient, sender). Append preserves FIFO
// order and resets the record's 7-day TTL. Drain returns the full record
// without deleting it; CommitDrain deletes it and must only be called once
// every drained payload has been handed to the recipient's live channel.
type OfflineStore interface {
	Append(ctx context.Context, recipient, sender string, payload []byte) error
	Drain(ctx context.Context, recipient, sender string) ([][]byte, error)
	CommitDrain(ctx context.Context, recipient, sender string) error

	SetPushToken(ctx context.Context, uid, token string) error
	PushToken(ctx context.Context, uid string) (string, error)
	DeletePushToken(ctx context.Context, uid string) error

	SetPublicKeys(ctx context.Context, uid, x25519Key, ed25519Key string) error
	PublicKeys(ctx context.Context, uid string) (x25519Key, ed25519Key string, err error)
}

// PushNotifier wakes a disconnected client's device. Best-effort: the relay
// logs failures and moves on, it never retries or blocks delivery on them.
// The wake signal carries no message content.
type PushNotifier interface {
	Notify(ctx context.Context, targetUID, fromUID, kind string) error
}
