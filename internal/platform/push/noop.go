package push

import (
	"context"

	"github.com/rs/zerolog"
)

// Noop is the degraded-mode notifier used when no Firebase credentials are
// configured. Offline recipients simply receive no wake signal.
type Noop struct {
	logger zerolog.Logger
}

// NewNoop creates a no-op notifier.
func NewNoop(logger zerolog.Logger) *Noop {
	return &Noop{logger: logger.With().Str("component", "NoopNotifier").Logger()}
}

func (n *Noop) Notify(_ context.Context, targetUID, _, kind string) error {
	n.logger.Debug().Str("target", targetUID).Str("kind", kind).Msg("Push disabled, dropping notification")
	return nil
}
