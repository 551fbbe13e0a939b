// Package riot adapts the Riot identity provider: resolving a Riot ID to a
// stable account reference and reading the account's currently-displayed
// profile icon. Calls are single-shot; the relay never retries them and
// never caches an icon, since the icon is read fresh at each challenge step.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lobbyn/relay/internal/model"
	"github.com/lobbyn/relay/internal/riot/budget"
)

// Client is the identity provider surface the handshake consumes.
type Client interface {
	// ResolveAccount resolves a Riot ID to its account reference.
	// Returns model.ErrAccountNotFound if the identity does not exist.
	ResolveAccount(ctx context.Context, displayName, tag string) (model.AccountRef, error)

	// CurrentIcon reads the account's currently-displayed profile icon in
	// the given region. Returns model.ErrNoRegionPresence if the account
	// has no presence there.
	CurrentIcon(ctx context.Context, ref model.AccountRef, region model.PlayerRegion) (model.IconID, error)
}

const apiDomain = "api.riotgames.com"

// Region used for the startup key check; any platform works, the original
// deployment probed Europe West.
const statusRegion = "euw1"

// Config holds Riot API client settings
type Config struct {
	// APIKey is sent as X-Riot-Token on every request
	APIKey string

	// Continent routes account resolution
	Continent model.Continent

	// Timeout bounds each HTTP request
	Timeout time.Duration

	// BaseURL, when set, replaces the per-host https URLs entirely (tests)
	BaseURL string
}

// DefaultConfig returns sensible defaults for the Riot client
func DefaultConfig() Config {
	return Config{
		Continent: model.ContinentEurope,
		Timeout:   10 * time.Second,
	}
}

// HTTPClient talks to the real Riot API.
type HTTPClient struct {
	http   *http.Client
	cfg    Config
	budget budget.Budget
	logger *slog.Logger
}

// NewHTTPClient creates a Riot API client
func NewHTTPClient(cfg Config, b budget.Budget, logger *slog.Logger) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &HTTPClient{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		budget: b,
		logger: logger.With(slog.String("component", "riot")),
	}
}

// Ensure HTTPClient implements the interface
var _ Client = (*HTTPClient)(nil)

type accountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type summonerResponse struct {
	ProfileIconID int   `json:"profileIconId"`
	SummonerLevel int64 `json:"summonerLevel"`
}

// ResolveAccount resolves a Riot ID via account-v1 on the continent host
func (c *HTTPClient) ResolveAccount(ctx context.Context, displayName, tag string) (model.AccountRef, error) {
	reqURL := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseURL(string(c.cfg.Continent)), url.PathEscape(displayName), url.PathEscape(tag))

	var account accountResponse
	if err := c.get(ctx, reqURL, model.ErrAccountNotFound, &account); err != nil {
		return "", err
	}
	return model.AccountRef(account.PUUID), nil
}

// CurrentIcon reads the live profile icon via summoner-v4 on the platform host
func (c *HTTPClient) CurrentIcon(ctx context.Context, ref model.AccountRef, region model.PlayerRegion) (model.IconID, error) {
	reqURL := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s",
		c.baseURL(strings.ToLower(string(region))), url.PathEscape(string(ref)))

	var summoner summonerResponse
	if err := c.get(ctx, reqURL, model.ErrNoRegionPresence, &summoner); err != nil {
		return 0, err
	}
	return model.IconID(summoner.ProfileIconID), nil
}

// CheckKey verifies the configured API key against the platform status
// endpoint. Called once at startup.
func (c *HTTPClient) CheckKey(ctx context.Context) error {
	reqURL := c.baseURL(statusRegion) + "/lol/status/v4/platform-data"
	if err := c.get(ctx, reqURL, nil, nil); err != nil {
		return fmt.Errorf("riot api key check failed: %w", err)
	}
	return nil
}

// get performs a budgeted GET, mapping 404 to notFound and decoding a 200
// body into out when out is non-nil.
func (c *HTTPClient) get(ctx context.Context, reqURL string, notFound error, out any) error {
	if err := c.budget.Spend(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Riot-Token", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode == http.StatusNotFound && notFound != nil:
		return notFound
	default:
		return fmt.Errorf("riot api: unexpected status %d", resp.StatusCode)
	}
}

// baseURL returns the scheme+host for a Riot subdomain, honoring the test
// override.
func (c *HTTPClient) baseURL(subdomain string) string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	return fmt.Sprintf("https://%s.%s", subdomain, apiDomain)
}
