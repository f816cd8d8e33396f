package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.JWT.AccessTTLMins)
	assert.Equal(t, 30, cfg.JWT.RefreshTTLDays)
	assert.Equal(t, int64(25<<20), cfg.Storage.MaxBytes)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL_MINS", "5")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.JWT.AccessTTLMins)
	// Unparseable ints fall back to the default.
	assert.Equal(t, 0, cfg.Redis.DB)
}
