// Package portaltest serves canned upstream responses for handler and tool
// tests.
package portaltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/vox-portal/internal/config"
)

// APIKey is the market-data key the fake upstream expects.
const APIKey = "test-polygon-key"

// MalformedTicker makes the aggregates endpoint omit its results list.
const MalformedTicker = "BAD"

// Upstream fakes the aggregates, trending, dog image and breed endpoints.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	failing  map[string]bool
	requests map[string]int
}

// Upstream path prefixes, also used with Fail and Requests.
const (
	PathAggregates = "/v2/aggs/ticker/"
	PathTrending   = "/api/v1/apps/reddit"
	PathDogImages  = "/api/breeds/image/random/"
	PathBreeds     = "/v1/breeds"
)

// Trending is the canned ranked list, seven entries long.
var Trending = []map[string]any{
	{"ticker": "GME", "no_of_comments": 512, "sentiment": "Bullish", "sentiment_score": 0.21},
	{"ticker": "AMC", "no_of_comments": 300, "sentiment": "Bearish", "sentiment_score": -0.1},
	{"ticker": "TSLA", "no_of_comments": 120, "sentiment": "bullish", "sentiment_score": 0.05},
	{"ticker": "AAPL", "no_of_comments": 80, "sentiment": "Bullish", "sentiment_score": 0.3},
	{"ticker": "NVDA", "no_of_comments": 64, "sentiment": "Neutral", "sentiment_score": 0},
	{"ticker": "PLTR", "no_of_comments": 40, "sentiment": "Bullish", "sentiment_score": 0.2},
	{"ticker": "SPY", "no_of_comments": 12, "sentiment": "Bearish", "sentiment_score": -0.3},
}

// Breeds is the canned breed list. The second entry has no temperament.
var Breeds = []map[string]any{
	{"id": 1, "name": "Affenpinscher", "temperament": "Stubborn, Curious, Playful", "life_span": "10 - 12 years"},
	{"id": 2, "name": "Afghan Hound", "life_span": "10 - 13 years"},
	{"id": 5, "name": "Akita", "temperament": "Docile, Alert, Responsive", "life_span": "10 - 14 years"},
}

// NewUpstream starts a fake upstream closed at test cleanup.
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()
	u := &Upstream{failing: make(map[string]bool), requests: make(map[string]int)}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Server.Close)
	return u
}

// Fail makes every request under prefix answer 503.
func (u *Upstream) Fail(prefix string) {
	u.mu.Lock()
	u.failing[prefix] = true
	u.mu.Unlock()
}

// Requests counts requests served under prefix.
func (u *Upstream) Requests(prefix string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests[prefix]
}

// Config returns a dev configuration pointing every upstream at u.
func (u *Upstream) Config() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Environment = "dev"
	cfg.Upstream.Polygon.BaseURL = u.URL
	cfg.Upstream.Polygon.APIKey = APIKey
	cfg.Upstream.Trending.URL = u.URL + PathTrending
	cfg.Upstream.DogCEO.BaseURL = u.URL
	cfg.Upstream.TheDogAPI.BaseURL = u.URL
	cfg.Upstream.Timeout = "2s"
	cfg.Chart.Timezone = "UTC"
	return cfg
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	prefix := ""
	for _, p := range []string{PathAggregates, PathTrending, PathDogImages, PathBreeds} {
		if strings.HasPrefix(r.URL.Path, p) {
			prefix = p
		}
	}
	if prefix == "" {
		http.NotFound(w, r)
		return
	}

	u.mu.Lock()
	u.requests[prefix]++
	failing := u.failing[prefix]
	u.mu.Unlock()

	if failing {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch prefix {
	case PathAggregates:
		serveAggregates(w, r)
	case PathTrending:
		json.NewEncoder(w).Encode(Trending)
	case PathDogImages:
		json.NewEncoder(w).Encode(map[string]any{
			"message": []string{
				"https://images.dog.ceo/breeds/akita/a.jpg",
				"https://images.dog.ceo/breeds/pug/b.jpg",
				"https://images.dog.ceo/breeds/husky/c.jpg",
			},
			"status": "success",
		})
	case PathBreeds:
		json.NewEncoder(w).Encode(Breeds)
	}
}

// serveAggregates answers /v2/aggs/ticker/{T}/range/1/day/{from}/{to} with
// one bar per day at the start of the window.
func serveAggregates(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("apiKey") != APIKey {
		http.Error(w, `{"status":"ERROR","error":"Unknown API Key"}`, http.StatusUnauthorized)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, PathAggregates), "/")
	if len(parts) != 6 {
		http.NotFound(w, r)
		return
	}
	ticker, from := parts[0], parts[4]
	if ticker == MalformedTicker {
		json.NewEncoder(w).Encode(map[string]any{"ticker": ticker, "status": "OK", "resultsCount": 0})
		return
	}

	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		http.Error(w, `{"status":"ERROR"}`, http.StatusBadRequest)
		return
	}
	closes := []string{"101.5", "102.25", "99.75"}
	results := make([]map[string]any, len(closes))
	for i, c := range closes {
		results[i] = map[string]any{
			"t": start.AddDate(0, 0, i).Add(12 * time.Hour).UnixMilli(),
			"c": json.Number(c),
		}
	}
	json.NewEncoder(w).Encode(map[string]any{"ticker": ticker, "status": "OK", "results": results})
}
