package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamatrix/internal/igdbcache"
	"gamatrix/internal/logging"
)

const (
	defaultAPIBaseURL = "https://api.igdb.com/v4"
	defaultAuthURL    = "https://id.twitch.tv/oauth2/token"
	// IGDB allows 4 requests per second.
	defaultRequestDelay = 250 * time.Millisecond
)

// Client makes authenticated IGDB calls and writes results into the cache
// document. It is single-writer by design: one comparison drives one client,
// matching the cache's read-modify-write lifecycle.
type Client struct {
	clientID     string
	clientSecret string
	apiBaseURL   string
	authURL      string
	refresh      bool

	httpClient *http.Client
	sleep      func(time.Duration)

	cache  *igdbcache.Document
	logger *slog.Logger

	delay    time.Duration
	lastCall time.Time
	failures int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIBaseURL overrides the IGDB API base URL (used in tests).
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.apiBaseURL = trimmed
		}
	}
}

// WithAuthURL overrides the Twitch token endpoint (used in tests).
func WithAuthURL(authURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(authURL); trimmed != "" {
			c.authURL = trimmed
		}
	}
}

// WithRequestDelay sets the minimum spacing between calls.
func WithRequestDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.delay = delay
		}
	}
}

// WithSleep overrides the sleep function (used in tests).
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithForceRefresh re-attempts cached lookups that previously came back
// empty (sentinel ids, empty payloads). Complete entries are still trusted.
func WithForceRefresh(refresh bool) Option {
	return func(c *Client) { c.refresh = refresh }
}

// New creates an IGDB client writing into cache.
func New(clientID, clientSecret string, cache *igdbcache.Document, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, errors.New("igdb client id and secret required")
	}
	if cache == nil {
		return nil, errors.New("igdb cache document required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Client{
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		apiBaseURL:   defaultAPIBaseURL,
		authURL:      defaultAuthURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		sleep:        time.Sleep,
		cache:        cache,
		logger:       logging.WithComponent(logger, "igdb"),
		delay:        defaultRequestDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Game returns the cached entry for key.
func (c *Client) Game(key string) (igdbcache.GameEntry, bool) {
	return c.cache.Game(key)
}

// FailureCount returns the consecutive-failure counter (visible for tests).
func (c *Client) FailureCount() int { return c.failures }

// Authenticate ensures a usable access token exists, fetching one when the
// cache holds none. It reports success; on failure the caller must not
// drive lookups.
func (c *Client) Authenticate(ctx context.Context) bool {
	if c.cache.AccessToken() != "" {
		return true
	}
	return c.fetchAccessToken(ctx)
}

// fetchAccessToken performs the Twitch client-credentials exchange and
// stores the token in the cache document so it survives across runs.
func (c *Client) fetchAccessToken(ctx context.Context) bool {
	endpoint, err := url.Parse(c.authURL)
	if err != nil {
		c.logger.Error("bad auth url", logging.Error(err))
		return false
	}
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		c.logger.Error("build token request", logging.Error(err))
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("token request failed", logging.Error(err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("token request rejected",
			logging.Int("status", resp.StatusCode),
			logging.String("body", string(body)))
		return false
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		c.logger.Error("token response missing access_token",
			logging.String("body", string(body)))
		return false
	}

	c.cache.SetAccessToken(payload.AccessToken)
	c.logger.Debug("obtained access token")
	return true
}

// apiRequest posts an APIcalypse body to endpoint and returns the raw
// response. It enforces the inter-call spacing, backs off while calls keep
// failing, retries 429 indefinitely, and renews the token once on 401. The
// boolean result is false when the call ultimately failed; the caller gets
// no data and no error, per the degradation contract.
func (c *Client) apiRequest(ctx context.Context, endpoint, body string) ([]byte, bool) {
	// Linear backoff while the upstream keeps failing.
	if c.failures > 0 {
		c.sleep(time.Duration(c.failures) * c.delay)
	}

	refreshed := false
	for {
		if wait := c.delay - time.Since(c.lastCall); wait > 0 {
			c.sleep(wait)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+endpoint, strings.NewReader(body))
		if err != nil {
			c.logger.Error("build api request", logging.Error(err))
			c.failures++
			return nil, false
		}
		req.Header.Set("Client-ID", c.clientID)
		req.Header.Set("Authorization", "Bearer "+c.cache.AccessToken())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("api request failed",
				logging.String("endpoint", endpoint),
				logging.Error(err))
			c.failures++
			return nil, false
		}
		c.lastCall = time.Now()

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if readErr != nil {
				c.logger.Error("read api response", logging.Error(readErr))
				c.failures++
				return nil, false
			}
			c.failures = 0
			return data, true

		case http.StatusTooManyRequests:
			// Purely a pacing problem; retry for as long as it takes.
			c.logger.Info("rate limit exceeded, sleeping",
				logging.Duration("sleep", 2*c.delay))
			c.sleep(2 * c.delay)

		case http.StatusUnauthorized:
			if refreshed {
				c.logger.Error("request unauthorized after token refresh",
					logging.String("endpoint", endpoint))
				c.failures++
				return nil, false
			}
			c.logger.Info("access token expired, refreshing")
			c.cache.SetAccessToken("")
			if !c.fetchAccessToken(ctx) {
				c.failures++
				return nil, false
			}
			refreshed = true

		default:
			c.logger.Error("api request rejected",
				logging.String("endpoint", endpoint),
				logging.Int("status", resp.StatusCode),
				logging.String("body", string(data)))
			c.failures++
			return nil, false
		}
	}
}
