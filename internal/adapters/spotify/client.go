// Package spotify implements the catalog port against the Spotify Web API
// search endpoint, rendering results in the numbered listing format the
// resolver core parses.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	defaultLimit = 10
)

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	market      string
	limit       int
	maxRetries  int
	baseBackoff time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// compile-time interface assertion
var _ ports.CatalogSearcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithMarket restricts results to an ISO 3166-1 market.
func WithMarket(market string) Option {
	return func(c *Client) { c.market = strings.ToUpper(strings.TrimSpace(market)) }
}

// WithLimit sets how many tracks a search returns.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= 50 {
			c.limit = n
		}
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithRetry overrides the retry budget for 429 and 5xx responses.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
		if baseBackoff > 0 {
			c.baseBackoff = baseBackoff
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient constructs a new Spotify client. httpClient is expected to
// attach credentials; see NewCredentialsHTTPClient.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		limit:       defaultLimit,
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBackoff,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCredentialsHTTPClient returns an HTTP client that authenticates with
// the client-credentials flow, caching and refreshing the app token.
func NewCredentialsHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string) *http.Client {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cfg.Client(ctx)
	httpClient.Timeout = 15 * time.Second
	return httpClient
}
