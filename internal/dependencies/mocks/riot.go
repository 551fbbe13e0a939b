package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/lobbyn/relay/internal/model"
)

// MockProvider scripts identity-provider responses for tests.
type MockProvider struct {
	mu       sync.Mutex
	accounts map[string]model.AccountRef
	icons    map[string]model.IconID

	// ResolveErr and IconErr, when set, are returned unconditionally
	ResolveErr error
	IconErr    error

	// Call counters
	ResolveCalls int
	IconCalls    int
}

// NewMockProvider creates an empty MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		accounts: make(map[string]model.AccountRef),
		icons:    make(map[string]model.IconID),
	}
}

// SetAccount registers a resolvable Riot ID
func (p *MockProvider) SetAccount(displayName, tag string, ref model.AccountRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[accountKey(displayName, tag)] = ref
}

// SetIcon sets the current icon for an account in a region
func (p *MockProvider) SetIcon(ref model.AccountRef, region model.PlayerRegion, icon model.IconID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.icons[iconKey(ref, region)] = icon
}

// ResolveAccount returns the scripted account reference
func (p *MockProvider) ResolveAccount(ctx context.Context, displayName, tag string) (model.AccountRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ResolveCalls++
	if p.ResolveErr != nil {
		return "", p.ResolveErr
	}
	ref, ok := p.accounts[accountKey(displayName, tag)]
	if !ok {
		return "", model.ErrAccountNotFound
	}
	return ref, nil
}

// CurrentIcon returns the scripted icon
func (p *MockProvider) CurrentIcon(ctx context.Context, ref model.AccountRef, region model.PlayerRegion) (model.IconID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.IconCalls++
	if p.IconErr != nil {
		return 0, p.IconErr
	}
	icon, ok := p.icons[iconKey(ref, region)]
	if !ok {
		return 0, model.ErrNoRegionPresence
	}
	return icon, nil
}

func accountKey(displayName, tag string) string {
	return strings.ToLower(displayName) + "#" + strings.ToLower(tag)
}

func iconKey(ref model.AccountRef, region model.PlayerRegion) string {
	return string(ref) + "@" + string(region)
}
