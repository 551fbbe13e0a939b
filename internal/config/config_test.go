package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobbyn/relay/internal/model"
)

// validKey is a well-formed 42-character Riot API key.
var validKey = "RGAPI-" + strings.Repeat("x", 36)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RIOT_API_KEY", validKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "europe", cfg.RiotContinent)
	assert.False(t, cfg.SkipKeyCheck)
	assert.Equal(t, 30*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, BudgetBackendMemory, cfg.BudgetBackend)
	assert.Equal(t, 100, cfg.BudgetLimit)
	assert.Equal(t, 2*time.Minute, cfg.BudgetWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RIOT_API_KEY", validKey)
	t.Setenv("PORT", "9000")
	t.Setenv("RIOT_CONTINENT", "americas")
	t.Setenv("HANDSHAKE_TIMEOUT", "45s")
	t.Setenv("BUDGET_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, model.ContinentAmericas, cfg.Continent())
	assert.Equal(t, 45*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, BudgetBackendRedis, cfg.BudgetBackend)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RIOT_API_KEY")
}

func TestLoadMalformedAPIKey(t *testing.T) {
	t.Setenv("RIOT_API_KEY", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RIOT_API_KEY")
}

func TestLoadPortOutOfRange(t *testing.T) {
	t.Setenv("RIOT_API_KEY", validKey)
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoadUnknownContinent(t *testing.T) {
	t.Setenv("RIOT_API_KEY", validKey)
	t.Setenv("RIOT_CONTINENT", "atlantis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RIOT_CONTINENT")
}

func TestLoadRedisBackendRequiresURL(t *testing.T) {
	t.Setenv("RIOT_API_KEY", validKey)
	t.Setenv("BUDGET_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoadUnknownBudgetBackend(t *testing.T) {
	t.Setenv("RIOT_API_KEY", validKey)
	t.Setenv("BUDGET_BACKEND", "dynamo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUDGET_BACKEND")
}
