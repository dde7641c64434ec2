package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsInternallyConsistent(t *testing.T) {
	cfg := DefaultConfig()
	require.Greater(t, cfg.MaxConnections, 0)
	require.Greater(t, cfg.OutboundQueueDepth, 0)
	require.Greater(t, cfg.RateLimitBurst, 0)
	require.True(t, cfg.WebhookRequireSigned)
}

func TestFastConfigShrinksTimings(t *testing.T) {
	def := DefaultConfig()
	fast := FastConfig()
	require.Less(t, fast.RoundDuration, def.RoundDuration)
	require.Less(t, fast.BetweenRoundDuration, def.BetweenRoundDuration)
	require.False(t, fast.WebhookRequireSigned)
}

func TestLoadWithoutFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().ListenAddr, cfg.ListenAddr)
}

func TestLoadReadsEnvOverride(t *testing.T) {
	t.Setenv("BREAKPOINT_LISTEN_ADDR", ":9999")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.ListenAddr)
}
