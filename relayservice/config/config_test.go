package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.FirebaseCredentials)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 60, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://:secret@cache.internal:6379/0")
	t.Setenv("RATE_LIMIT_MAX", "120")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis://:secret@cache.internal:6379/0", cfg.RedisURL)
	assert.Equal(t, 120, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
}

func TestNormalizeRedisURL(t *testing.T) {
	assert.Equal(t, "redis://host:6379", NormalizeRedisURL("cache://host:6379"))
	assert.Equal(t, "redis://host:6379", NormalizeRedisURL("redis://host:6379"))
	assert.Empty(t, NormalizeRedisURL(""))
}

func TestLoad_NormalizesCacheScheme(t *testing.T) {
	t.Setenv("REDIS_URL", "cache://:token@provider.example:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://:token@provider.example:6379", cfg.RedisURL)
}
