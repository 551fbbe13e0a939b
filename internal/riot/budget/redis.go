package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lobbyn/relay/internal/dependencies/clock"
	"github.com/lobbyn/relay/internal/model"
)

// Key prefix for budget counters
const keyPrefix = "lobbyn"

// Redis is a budget shared by every relay instance using the same API key.
// Each window gets one counter; INCR keeps accounting atomic across
// instances.
type Redis struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
}

// NewRedis creates a Redis-backed budget, verifying the connection
func NewRedis(url string, cfg Config, clk clock.Clock) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisWithClient(client, cfg, clk), nil
}

// NewRedisWithClient creates a Redis budget with an existing client (for testing)
func NewRedisWithClient(client *redis.Client, cfg Config, clk clock.Clock) *Redis {
	return &Redis{
		client: client,
		cfg:    cfg,
		clock:  clk,
	}
}

// Ensure Redis implements the interface
var _ Budget = (*Redis)(nil)

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

// Spend reserves one request from the current window
func (r *Redis) Spend(ctx context.Context) error {
	key := r.windowKey(r.clock.Now())

	pipe := r.client.Pipeline()
	count := pipe.Incr(ctx, key)
	// Counters outlive their window by one extra window so a clock-skewed
	// instance never resurrects an expired one.
	pipe.Expire(ctx, key, 2*r.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if count.Val() > int64(r.cfg.Limit) {
		return model.ErrBudgetExhausted
	}
	return nil
}

// windowKey returns the counter key for the window containing t
func (r *Redis) windowKey(t time.Time) string {
	window := t.UnixMilli() / r.cfg.Window.Milliseconds()
	return fmt.Sprintf("%s:budget:%d", keyPrefix, window)
}
