package budget

import (
	"context"
	"sync"
	"time"

	"github.com/lobbyn/relay/internal/dependencies/clock"
	"github.com/lobbyn/relay/internal/model"
)

// Memory is an in-process budget. Suitable for a single relay instance
// owning its API key.
type Memory struct {
	mu          sync.Mutex
	cfg         Config
	clock       clock.Clock
	windowStart time.Time
	used        int
}

// NewMemory creates a new in-memory budget
func NewMemory(cfg Config, clk clock.Clock) *Memory {
	return &Memory{
		cfg:         cfg,
		clock:       clk,
		windowStart: clk.Now(),
	}
}

// Ensure Memory implements the interface
var _ Budget = (*Memory)(nil)

// Spend reserves one request from the current window
func (m *Memory) Spend(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if now.Sub(m.windowStart) >= m.cfg.Window {
		m.windowStart = now
		m.used = 0
	}
	if m.used >= m.cfg.Limit {
		return model.ErrBudgetExhausted
	}
	m.used++
	return nil
}
