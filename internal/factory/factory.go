// Package factory wires the relay's components together.
package factory

import (
	"io"
	"log/slog"

	"github.com/lobbyn/relay/internal/config"
	"github.com/lobbyn/relay/internal/dependencies/clock"
	"github.com/lobbyn/relay/internal/dependencies/random"
	"github.com/lobbyn/relay/internal/registry"
	"github.com/lobbyn/relay/internal/riot"
	"github.com/lobbyn/relay/internal/riot/budget"
	"github.com/lobbyn/relay/internal/services/handshake"
	"github.com/lobbyn/relay/internal/services/router"
	"github.com/lobbyn/relay/internal/ws"
)

// App contains all wired relay components
type App struct {
	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Identity provider
	Budget   budget.Budget
	Provider riot.Client

	// Core
	Registry  *registry.Registry
	Handshake *handshake.Service
	Router    *router.Service

	// Transport
	WSHandler *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Config is the loaded environment configuration
	Config config.Config

	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// Provider overrides the Riot client (tests)
	Provider riot.Client
}

// New creates a relay application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	budgetCfg := budget.Config{
		Limit:  cfg.Config.BudgetLimit,
		Window: cfg.Config.BudgetWindow,
	}
	if budgetCfg.Limit == 0 {
		budgetCfg = budget.DefaultConfig()
	}

	var b budget.Budget
	switch cfg.Config.BudgetBackend {
	case config.BudgetBackendRedis:
		redisBudget, err := budget.NewRedis(cfg.Config.RedisURL, budgetCfg, clk)
		if err != nil {
			return nil, err
		}
		b = redisBudget
	default:
		b = budget.NewMemory(budgetCfg, clk)
	}

	provider := cfg.Provider
	if provider == nil {
		riotCfg := riot.DefaultConfig()
		riotCfg.APIKey = cfg.Config.RiotAPIKey
		riotCfg.Continent = cfg.Config.Continent()
		provider = riot.NewHTTPClient(riotCfg, b, logger)
	}

	reg := registry.New(logger)

	handshakeCfg := handshake.DefaultConfig()
	if cfg.Config.HandshakeTimeout > 0 {
		handshakeCfg.Timeout = cfg.Config.HandshakeTimeout
	}

	hs := handshake.New(reg, provider, clk, rnd, handshakeCfg, logger)
	rt := router.New(reg, logger)
	handler := ws.NewHandler(reg, hs, rt, logger)

	return &App{
		Clock:     clk,
		Random:    rnd,
		Budget:    b,
		Provider:  provider,
		Registry:  reg,
		Handshake: hs,
		Router:    rt,
		WSHandler: handler,
	}, nil
}
