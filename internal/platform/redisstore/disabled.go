package redisstore

import (
	"context"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

// Disabled is the degraded-mode store used when no Redis URL is configured
// or the initial connection fails. Every operation reports
// relay.ErrStoreUnavailable; the router falls back to online-only delivery
// and messages to offline recipients are lost.
type Disabled struct{}

func (Disabled) Append(context.Context, string, string, []byte) error {
	return relay.ErrStoreUnavailable
}

func (Disabled) Drain(context.Context, string, string) ([][]byte, error) {
	return nil, relay.ErrStoreUnavailable
}

func (Disabled) CommitDrain(context.Context, string, string) error {
	return relay.ErrStoreUnavailable
}

func (Disabled) SetPushToken(context.Context, string, string) error {
	return relay.ErrStoreUnavailable
}

func (Disabled) PushToken(context.Context, string) (string, error) {
	return "", relay.ErrStoreUnavailable
}

func (Disabled) DeletePushToken(context.Context, string) error {
	return relay.ErrStoreUnavailable
}

func (Disabled) SetPublicKeys(context.Context, string, string, string) error {
	return relay.ErrStoreUnavailable
}

func (Disabled) PublicKeys(context.Context, string) (string, string, error) {
	return "", "", relay.ErrStoreUnavailable
}
