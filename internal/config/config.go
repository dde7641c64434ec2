// Package config loads the server's tunable parameters, grounded on the
// teacher's utils.Config/DefaultConfig pattern but sourced from the
// environment (and an optional YAML file) via viper instead of being
// hardcoded, since this server runs as a long-lived process rather than
// a single test binary.
package config

import (
	"strings"
	"time"

	"github.com/lguibr/breakpoint/internal/roommgr"
	"github.com/spf13/viper"
)

// Config holds every configurable server parameter.
type Config struct {
	ListenAddr string

	MaxConnections      int
	OutboundQueueDepth  int
	RateLimitPerSecond  float64
	RateLimitBurst      int
	MaxMessageBytes     int
	ProtocolVersion     uint8

	DefaultMaxPlayers           int
	DefaultRoundCount           int
	RoundDuration               time.Duration
	BetweenRoundDuration        time.Duration
	IdleRoomThreshold           time.Duration
	IdleRoomSweepInterval       time.Duration

	WebhookSecret         string
	WebhookRequireSigned  bool
}

// DefaultConfig returns the documented production defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",

		MaxConnections:     2000,
		OutboundQueueDepth: roommgr.DefaultOutboundCapacity,
		RateLimitPerSecond: 30,
		RateLimitBurst:     60,
		MaxMessageBytes:    65536,
		ProtocolVersion:    2,

		DefaultMaxPlayers:     8,
		DefaultRoundCount:     3,
		RoundDuration:         120 * time.Second,
		BetweenRoundDuration:  8 * time.Second,
		IdleRoomThreshold:     10 * time.Minute,
		IdleRoomSweepInterval: time.Minute,

		WebhookSecret:        "",
		WebhookRequireSigned: true,
	}
}

// FastConfig returns a config tuned for quick round turnover in tests.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.DefaultRoundCount = 1
	cfg.RoundDuration = 2 * time.Second
	cfg.BetweenRoundDuration = 100 * time.Millisecond
	cfg.IdleRoomThreshold = time.Second
	cfg.IdleRoomSweepInterval = 200 * time.Millisecond
	cfg.WebhookRequireSigned = false
	return cfg
}

// Load reads environment variables (prefixed BREAKPOINT_) and, if present,
// a YAML file at path, layering them over DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("breakpoint")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
	}

	cfg.ListenAddr = v.GetString("listen_addr")
	cfg.MaxConnections = v.GetInt("max_connections")
	cfg.OutboundQueueDepth = v.GetInt("outbound_queue_depth")
	cfg.RateLimitPerSecond = v.GetFloat64("rate_limit_per_second")
	cfg.RateLimitBurst = v.GetInt("rate_limit_burst")
	cfg.MaxMessageBytes = v.GetInt("max_message_bytes")
	cfg.ProtocolVersion = uint8(v.GetUint("protocol_version"))

	cfg.DefaultMaxPlayers = v.GetInt("default_max_players")
	cfg.DefaultRoundCount = v.GetInt("default_round_count")
	cfg.RoundDuration = v.GetDuration("round_duration")
	cfg.BetweenRoundDuration = v.GetDuration("between_round_duration")
	cfg.IdleRoomThreshold = v.GetDuration("idle_room_threshold")
	cfg.IdleRoomSweepInterval = v.GetDuration("idle_room_sweep_interval")

	cfg.WebhookSecret = v.GetString("webhook_secret")
	cfg.WebhookRequireSigned = v.GetBool("webhook_require_signed")

	return cfg, nil
}

func bindDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("max_connections", cfg.MaxConnections)
	v.SetDefault("outbound_queue_depth", cfg.OutboundQueueDepth)
	v.SetDefault("rate_limit_per_second", cfg.RateLimitPerSecond)
	v.SetDefault("rate_limit_burst", cfg.RateLimitBurst)
	v.SetDefault("max_message_bytes", cfg.MaxMessageBytes)
	v.SetDefault("protocol_version", cfg.ProtocolVersion)

	v.SetDefault("default_max_players", cfg.DefaultMaxPlayers)
	v.SetDefault("default_round_count", cfg.DefaultRoundCount)
	v.SetDefault("round_duration", cfg.RoundDuration)
	v.SetDefault("between_round_duration", cfg.BetweenRoundDuration)
	v.SetDefault("idle_room_threshold", cfg.IdleRoomThreshold)
	v.SetDefault("idle_room_sweep_interval", cfg.IdleRoomSweepInterval)

	v.SetDefault("webhook_secret", cfg.WebhookSecret)
	v.SetDefault("webhook_require_signed", cfg.WebhookRequireSigned)
}
