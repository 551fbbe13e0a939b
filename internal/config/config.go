// Package config loads relay settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lobbyn/relay/internal/model"
)

// Budget backend constants
const (
	BudgetBackendMemory = "memory"
	BudgetBackendRedis  = "redis"
)

// Riot API keys are fixed-length tokens; anything else is a paste error.
const riotAPIKeyLength = 42

// Config holds all relay settings.
type Config struct {
	// Port the HTTP/websocket server listens on
	Port int `env:"PORT" envDefault:"8080"`

	// RiotAPIKey is the key sent on every identity provider request
	RiotAPIKey string `env:"RIOT_API_KEY"`

	// RiotContinent routes account resolution (americas, asia, europe, esports)
	RiotContinent string `env:"RIOT_CONTINENT" envDefault:"europe"`

	// SkipKeyCheck disables the startup key validation call
	SkipKeyCheck bool `env:"SKIP_KEY_CHECK" envDefault:"false"`

	// HandshakeTimeout is the per-phase authentication deadline
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"30s"`

	// BudgetBackend selects the provider request budget store ("memory" or "redis")
	BudgetBackend string `env:"BUDGET_BACKEND" envDefault:"memory"`

	// BudgetLimit is the number of provider requests allowed per window
	BudgetLimit int `env:"BUDGET_LIMIT" envDefault:"100"`

	// BudgetWindow is the budget accounting window
	BudgetWindow time.Duration `env:"BUDGET_WINDOW" envDefault:"2m"`

	// RedisURL is required when BudgetBackend is "redis"
	RedisURL string `env:"REDIS_URL"`
}

// Load reads and validates configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if len(c.RiotAPIKey) != riotAPIKeyLength {
		return fmt.Errorf("RIOT_API_KEY must be %d characters long", riotAPIKeyLength)
	}
	if _, err := model.ParseContinent(c.RiotContinent); err != nil {
		return fmt.Errorf("RIOT_CONTINENT invalid: %w", err)
	}
	switch c.BudgetBackend {
	case BudgetBackendMemory:
	case BudgetBackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when BUDGET_BACKEND=redis")
		}
	default:
		return fmt.Errorf("BUDGET_BACKEND must be %q or %q", BudgetBackendMemory, BudgetBackendRedis)
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("HANDSHAKE_TIMEOUT must be positive")
	}
	return nil
}

// Continent returns the parsed continent. Call after Validate.
func (c Config) Continent() model.Continent {
	continent, _ := model.ParseContinent(c.RiotContinent)
	return continent
}
