// Package geocode provides forward geocoding of free-text addresses via the
// OpenStreetMap Nominatim API.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "pindrop/1.0 (+https://github.com/pindrop/pindrop)"
)

// Client geocodes a single free-text address.
type Client interface {
	// Geocode performs one lookup for the given address. A lookup that
	// completes but matches nothing returns Matched=false and a nil error;
	// a non-nil error means the lookup itself failed (transport, provider
	// status, malformed response). No retries, no caching.
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Result holds the first (and only requested) candidate for an address.
// Lat and Lng are named fields on purpose: providers disagree on positional
// [lat,lng] vs [lng,lat] order, and the ambiguity ends at this struct.
type Result struct {
	Lat         float64
	Lng         float64
	DisplayName string
	Matched     bool
}

// Option configures the geocoder.
type Option func(*nominatim)

// WithBaseURL overrides the Nominatim endpoint, e.g. for a self-hosted
// instance or a test server.
func WithBaseURL(u string) Option {
	return func(n *nominatim) {
		if u != "" {
			n.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires one that identifies the application.
func WithUserAgent(ua string) Option {
	return func(n *nominatim) {
		if ua != "" {
			n.userAgent = ua
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *nominatim) {
		n.httpClient = hc
	}
}

// WithRateLimit overrides the default 1 req/s limit.
func WithRateLimit(rps float64) Option {
	return func(n *nominatim) {
		if rps > 0 {
			n.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Nominatim-backed geocoding Client. Requests are
// throttled to 1 req/s by default, per the public instance's usage policy.
func NewClient(opts ...Option) Client {
	n := &nominatim{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
