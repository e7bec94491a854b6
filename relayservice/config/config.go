// Package config loads the relay service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures the relay runtime parameters. The service is configured
// entirely through environment variables; every collaborator is optional and
// the relay degrades rather than refuses to start when one is absent.
type Config struct {
	Port                string        `mapstructure:"port"`
	RedisURL            string        `mapstructure:"redis_url"`
	FirebaseCredentials string        `mapstructure:"firebase_service_account_json"`
	LogLevel            string        `mapstructure:"log_level"`
	RateLimitWindow     time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax        int           `mapstructure:"rate_limit_max"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

const (
	defaultPort                = "8080"
	defaultLogLevel            = "info"
	defaultRateLimitWindow     = 60 * time.Second
	defaultRateLimitMax        = 60
	defaultShutdownGracePeriod = 15 * time.Second
)

// Load reads configuration from the environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// The deployment platform sets these as bare names, not prefixed ones.
	for _, key := range []string{
		"port", "redis_url", "firebase_service_account_json",
		"log_level", "rate_limit_window", "rate_limit_max",
		"shutdown_grace_period",
	} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("rate_limit_window", defaultRateLimitWindow.String())
	v.SetDefault("rate_limit_max", defaultRateLimitMax)
	v.SetDefault("shutdown_grace_period", defaultShutdownGracePeriod.String())

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Viper leaves durations as strings; normalize them here.
	window, err := time.ParseDuration(v.GetString("rate_limit_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate_limit_window: %w", err)
	}
	cfg.RateLimitWindow = window

	grace, err := time.ParseDuration(v.GetString("shutdown_grace_period"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid shutdown_grace_period: %w", err)
	}
	cfg.ShutdownGracePeriod = grace

	if cfg.RateLimitMax <= 0 {
		return Config{}, fmt.Errorf("rate_limit_max must be positive, got %d", cfg.RateLimitMax)
	}

	cfg.RedisURL = NormalizeRedisURL(cfg.RedisURL)
	return cfg, nil
}

// NormalizeRedisURL rewrites provider-specific cache:// schemes to the
// redis:// scheme the client library understands.
func NormalizeRedisURL(url string) string {
	if strings.HasPrefix(url, "cache://") {
		return "redis://" + strings.TrimPrefix(url, "cache://")
	}
	return url
}
