// Package client talks to the third-party HTTP endpoints the portal renders from.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/vox-portal/internal/cache"
	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
)

// maxResponseSize caps upstream bodies (the full breed list is ~200KB).
const maxResponseSize = 4 << 20

// Upstream names, used in errors, logs and cache keys.
const (
	UpstreamPolygon   = "polygon"
	UpstreamTrending  = "trending"
	UpstreamDogImages = "dogceo"
	UpstreamBreeds    = "thedogapi"
)

// Options configures an UpstreamClient.
type Options struct {
	PolygonURL    string
	PolygonKey    string
	PolygonLimit  int
	TrendingURL   string
	DogCEOURL     string
	TheDogAPIURL  string
	TheDogAPIKey  string
	Timeout       time.Duration
	UserAgent     string
	Cache         *cache.Cache      // nil disables caching
	HTTPTransport http.RoundTripper // nil uses http.DefaultTransport
}

// OptionsFromConfig maps portal configuration onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PolygonURL:   cfg.Upstream.Polygon.BaseURL,
		PolygonKey:   cfg.Upstream.Polygon.APIKey,
		PolygonLimit: cfg.Upstream.Polygon.Limit,
		TrendingURL:  cfg.Upstream.Trending.URL,
		DogCEOURL:    cfg.Upstream.DogCEO.BaseURL,
		TheDogAPIURL: cfg.Upstream.TheDogAPI.BaseURL,
		TheDogAPIKey: cfg.Upstream.TheDogAPI.APIKey,
		Timeout:      cfg.UpstreamTimeout(),
		UserAgent:    config.UserAgent(),
		Cache:        cache.New(cfg.CacheTTL(), cfg.Upstream.Cache.MaxEntries),
	}
}

// UpstreamClient issues GETs against the aggregates, trending, dog image and
// breed endpoints. Safe for concurrent use.
type UpstreamClient struct {
	opts       Options
	httpClient *http.Client
	logger     *common.Logger
}

// NewUpstreamClient creates a client from opts.
func NewUpstreamClient(opts Options, logger *common.Logger) *UpstreamClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PolygonLimit <= 0 {
		opts.PolygonLimit = 120
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &UpstreamClient{
		opts: opts,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.HTTPTransport,
		},
		logger: logger,
	}
}

// get performs a GET and returns the body. logURL is what gets logged, so
// callers pass a redacted form when the query carries a secret. Cacheable
// requests go through the response cache, which also folds concurrent
// identical requests into one.
func (c *UpstreamClient) get(ctx context.Context, upstream, rawURL, logURL string, header http.Header, cacheable bool) ([]byte, error) {
	if !cacheable {
		return c.fetch(ctx, upstream, rawURL, logURL, header)
	}
	// The fetch may be shared with other callers, so it must not end with
	// this caller's ctx. The client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	body, hit, err := c.opts.Cache.Fetch(ctx, cache.Key(upstream, rawURL), func() ([]byte, error) {
		return c.fetch(shared, upstream, rawURL, logURL, header)
	})
	if hit {
		c.logger.Debug().Str("upstream", upstream).Str("url", logURL).Msg("upstream cache hit")
	}
	return body, err
}

func (c *UpstreamClient) fetch(ctx context.Context, upstream, rawURL, logURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{Upstream: upstream, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		msg := redact(err.Error(), rawURL, logURL)
		c.logger.Error().Str("upstream", upstream).Str("url", logURL).Dur("elapsed", elapsed).Str("error", msg).Msg("upstream request failed")
		return nil, &NetworkError{Upstream: upstream, Err: errors.New(msg)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &NetworkError{Upstream: upstream, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debug().Str("upstream", upstream).Str("url", logURL).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Upstream: upstream, StatusCode: resp.StatusCode, Err: errors.New(snippet(body))}
	}
	return body, nil
}

// decode unmarshals body into v, mapping failures to DataFormatError.
func decode(upstream string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &DataFormatError{Upstream: upstream, Reason: "unexpected response body", Err: err}
	}
	return nil
}

// snippet trims an error body for inclusion in an error message.
func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// redact swaps the secret-bearing URL for its logged form inside transport errors.
func redact(msg, rawURL, logURL string) string {
	if rawURL == logURL {
		return msg
	}
	return strings.ReplaceAll(msg, rawURL, logURL)
}
