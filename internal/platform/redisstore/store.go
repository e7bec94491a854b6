// Package redisstore implements the durable offline store on Redis: the
// per-(recipient, sender) FIFO queues plus the push-token and public-key
// records.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

const (
	offlineTTL   = 7 * 24 * time.Hour
	publicKeyTTL = 30 * 24 * time.Hour
)

// Client is the slice of go-redis the store needs.
type Client interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Store implements relay.OfflineStore against Redis.
type Store struct {
	client Client
	logger zerolog.Logger
}

// New creates a Store. The client must be non-nil; a relay running without
// Redis uses Disabled instead.
func New(client Client, logger zerolog.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &Store{
		client: client,
		logger: logger.With().Str("component", "RedisStore").Logger(),
	}, nil
}

// Append pushes payload to the tail of the (recipient, sender) queue and
// resets the record's TTL. FIFO order within a record is Redis list order,
// so concurrent appends from unrelated sessions stay correctly ordered.
func (s *Store) Append(ctx context.Context, recipient, sender string, payload []byte) error {
	key := offlineKey(recipient, sender)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("failed to rpush offline message: %w", err)
	}
	if err := s.client.Expire(ctx, key, offlineTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to refresh offline queue TTL")
	}
	s.logger.Info().Str("recipient", recipient).Str("sender", sender).Msg("Stored offline message")
	return nil
}

// Drain returns the full (recipient, sender) record in FIFO order without
// deleting it. The caller commits the drain only after every payload has
// been handed to the recipient's live channel.
func (s *Store) Drain(ctx context.Context, recipient, sender string) ([][]byte, error) {
	key := offlineKey(recipient, sender)
	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to lrange offline queue: %w", err)
	}
	payloads := make([][]byte, 0, len(values))
	for _, v := range values {
		payloads = append(payloads, []byte(v))
	}
	return payloads, nil
}

// CommitDrain deletes the (recipient, sender) record.
func (s *Store) CommitDrain(ctx context.Context, recipient, sender string) error {
	key := offlineKey(recipient, sender)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete offline queue: %w", err)
	}
	s.logger.Info().Str("recipient", recipient).Str("sender", sender).Msg("Cleared offline queue")
	return nil
}

// SetPushToken stores uid's push token with no expiry; the client refreshes
// it on rotation.
func (s *Store) SetPushToken(ctx context.Context, uid, token string) error {
	if err := s.client.Set(ctx, tokenKey(uid), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	return nil
}

// PushToken returns uid's push token, or relay.ErrNotFound.
func (s *Store) PushToken(ctx context.Context, uid string) (string, error) {
	token, err := s.client.Get(ctx, tokenKey(uid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", relay.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get push token: %w", err)
	}
	return token, nil
}

// DeletePushToken removes uid's push token. Used when the push backend
// reports the token as unregistered.
func (s *Store) DeletePushToken(ctx context.Context, uid string) error {
	if err := s.client.Del(ctx, tokenKey(uid)).Err(); err != nil {
		return fmt.Errorf("failed to delete push token: %w", err)
	}
	return nil
}

// SetPublicKeys stores both of uid's public keys, each with a 30-day TTL.
func (s *Store) SetPublicKeys(ctx context.Context, uid, x25519Key, ed25519Key string) error {
	if err := s.client.Set(ctx, publicKeyKey(uid, "x25519"), x25519Key, publicKeyTTL).Err(); err != nil {
		return fmt.Errorf("failed to set x25519 key: %w", err)
	}
	if err := s.client.Set(ctx, publicKeyKey(uid, "ed25519"), ed25519Key, publicKeyTTL).Err(); err != nil {
		return fmt.Errorf("failed to set ed25519 key: %w", err)
	}
	return nil
}

// PublicKeys returns both of uid's keys. relay.ErrNotFound if either is
// missing or expired.
func (s *Store) PublicKeys(ctx context.Context, uid string) (string, string, error) {
	x25519Key, err := s.client.Get(ctx, publicKeyKey(uid, "x25519")).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", relay.ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get x25519 key: %w", err)
	}
	ed25519Key, err := s.client.Get(ctx, publicKeyKey(uid, "ed25519")).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", relay.ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get ed25519 key: %w", err)
	}
	return x25519Key, ed25519Key, nil
}

// Ping probes backend connectivity for the status surface.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// --- Key layout ---

func offlineKey(recipient, sender string) string {
	return fmt.Sprintf("offline:%s:from:%s", recipient, sender)
}

func tokenKey(uid string) string { return fmt.Sprintf("fcm_token:%s", uid) }

func publicKeyKey(uid, kind string) string { return fmt.Sprintf("pubkey:%s:%s", uid, kind) }
