// Package budget limits outbound identity-provider requests to a fixed
// number per window, matching the quota attached to a Riot API key.
package budget

import (
	"context"
	"time"
)

// Budget accounts for outbound requests. Spend reserves one request from the
// current window and returns model.ErrBudgetExhausted once the window's
// allowance is used up. A denied spend is surfaced to the caller like any
// other provider failure; nothing retries or queues.
type Budget interface {
	Spend(ctx context.Context) error
}

// Config holds request budget settings
type Config struct {
	// Limit is the number of requests allowed per window
	Limit int

	// Window is the fixed accounting window
	Window time.Duration
}

// DefaultConfig matches the long-window quota of a Riot development key.
func DefaultConfig() Config {
	return Config{
		Limit:  100,
		Window: 2 * time.Minute,
	}
}
