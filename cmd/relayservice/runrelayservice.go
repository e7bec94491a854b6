package main

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/DDmsngr/deepdrift-backend/internal/api"
	"github.com/DDmsngr/deepdrift-backend/internal/app"
	"github.com/DDmsngr/deepdrift-backend/internal/metrics"
	"github.com/DDmsngr/deepdrift-backend/internal/platform/push"
	"github.com/DDmsngr/deepdrift-backend/internal/platform/redisstore"
	"github.com/DDmsngr/deepdrift-backend/internal/ratelimit"
	"github.com/DDmsngr/deepdrift-backend/internal/realtime"
	"github.com/DDmsngr/deepdrift-backend/internal/router"
	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
	"github.com/DDmsngr/deepdrift-backend/relayservice"
	"github.com/DDmsngr/deepdrift-backend/relayservice/config"
)

func main() {
	// 1. Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.With().Str("service", "deepdrift-relay").Logger()

	// 2. Load configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	logger.Info().Str("version", relayservice.Version).Msg("Starting relay")

	ctx := context.Background()

	// 3. Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	relayMetrics := metrics.New(reg)

	// 4. Durable store: Redis when configured, disabled mode otherwise.
	// A missing or unreachable backend degrades the relay, never stops it.
	store, storePing := newOfflineStore(ctx, &cfg, logger)

	// 5. Push notifier: FCM when credentials are present, no-op otherwise.
	notifier, pushActive := newPushNotifier(ctx, &cfg, store, logger)

	// 6. Core collaborators
	registry := realtime.NewRegistry()
	limiter := ratelimit.NewSlidingWindow(cfg.RateLimitWindow, cfg.RateLimitMax)

	rtr, err := router.New(registry, limiter, store, notifier, relayMetrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create router")
	}

	connManager, err := realtime.NewConnectionManager(
		func(ctx context.Context, conn *websocket.Conn) {
			rtr.HandleConnection(ctx, conn)
		},
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Connection Manager")
	}

	statusHandler := api.NewStatusHandler(relayservice.Version, registry, storePing, pushActive, logger)

	// 7. Assemble and run
	service, err := relayservice.New(&cfg, connManager, statusHandler, reg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create relay service")
	}

	app.Run(ctx, logger, service, cfg.ShutdownGracePeriod)
}

// newOfflineStore connects to Redis if a URL is configured. The returned
// ping func is nil when the store is disabled, which the status endpoint
// reports as disconnected.
func newOfflineStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (relay.OfflineStore, func(context.Context) error) {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, offline storage disabled")
		return redisstore.Disabled{}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid REDIS_URL, offline storage disabled")
		return redisstore.Disabled{}, nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error().Err(err).Msg("Redis unreachable, offline storage disabled")
		return redisstore.Disabled{}, nil
	}

	store, err := redisstore.New(client, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create store, offline storage disabled")
		return redisstore.Disabled{}, nil
	}
	logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return store, store.Ping
}

// newPushNotifier initializes Firebase messaging from the configured service
// account. The second return reports whether real pushes are active.
func newPushNotifier(ctx context.Context, cfg *config.Config, tokens push.TokenSource, logger zerolog.Logger) (relay.PushNotifier, bool) {
	if cfg.FirebaseCredentials == "" {
		logger.Warn().Msg("FIREBASE_SERVICE_ACCOUNT_JSON not set, push notifications disabled")
		return push.NewNoop(logger), false
	}

	notifier, err := newFCMNotifier(ctx, cfg.FirebaseCredentials, tokens, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Firebase init failed, push notifications disabled")
		return push.NewNoop(logger), false
	}
	logger.Info().Msg("Firebase messaging initialized")
	return notifier, true
}

func newFCMNotifier(ctx context.Context, credentialsJSON string, tokens push.TokenSource, logger zerolog.Logger) (relay.PushNotifier, error) {
	fbApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase app: %w", err)
	}
	msgClient, err := fbApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return push.NewFCMNotifier(msgClient, tokens, logger)
}
