package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Upstream    UpstreamConfig `toml:"upstream"`
	Chart       ChartConfig    `toml:"chart"`
	Voice       VoiceConfig    `toml:"voice"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// UpstreamConfig groups the third-party endpoints the portal reads from.
type UpstreamConfig struct {
	Polygon   PolygonConfig   `toml:"polygon"`
	Trending  TrendingConfig  `toml:"trending"`
	DogCEO    DogCEOConfig    `toml:"dogceo"`
	TheDogAPI TheDogAPIConfig `toml:"thedogapi"`
	Cache     CacheConfig     `toml:"cache"`
	Timeout   string          `toml:"timeout"`
}

// PolygonConfig holds the historical aggregates API settings.
// APIKey never leaves the server.
type PolygonConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Limit   int    `toml:"limit"`
}

// TrendingConfig holds the ranked reddit stocks endpoint.
type TrendingConfig struct {
	URL      string `toml:"url"`
	QuoteURL string `toml:"quote_url"` // ticker is appended
	TopN     int    `toml:"top_n"`
}

// DogCEOConfig holds the random dog image endpoint.
type DogCEOConfig struct {
	BaseURL string `toml:"base_url"`
	Count   int    `toml:"count"`
}

// TheDogAPIConfig holds the breed metadata endpoint.
type TheDogAPIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"` // optional, sent as x-api-key
}

// CacheConfig controls the upstream response cache. A zero TTL disables it.
type CacheConfig struct {
	TTL        string `toml:"ttl"`
	MaxEntries int    `toml:"max_entries"`
}

// ChartConfig controls how price series are labelled.
type ChartConfig struct {
	DateLayout   string `toml:"date_layout"`
	Timezone     string `toml:"timezone"`
	DefaultRange int    `toml:"default_range"`
}

// VoiceConfig controls recognition sessions.
type VoiceConfig struct {
	AutoRestart bool `toml:"auto_restart"`
	Continuous  bool `toml:"continuous"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// IsDevMode reports whether the portal runs in development mode.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// UpstreamTimeout parses the per-request upstream timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	d, err := time.ParseDuration(c.Upstream.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CacheTTL parses the upstream cache TTL. Zero means caching is off.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Upstream.Cache.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ChartLocation resolves the timezone used for chart labels.
func (c *Config) ChartLocation() *time.Location {
	switch c.Chart.Timezone {
	case "", "Local":
		return time.Local
	}
	loc, err := time.LoadLocation(c.Chart.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// BaseURL returns the externally reachable portal URL.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// Validate returns a list of configuration problems. Empty means valid.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Upstream.Polygon.BaseURL == "" {
		issues = append(issues, "upstream.polygon.base_url is required")
	}
	if c.Upstream.Polygon.APIKey == "" && !c.IsDevMode() {
		issues = append(issues, "upstream.polygon.api_key is required (set VOX_POLYGON_API_KEY)")
	}
	if c.Upstream.Trending.URL == "" {
		issues = append(issues, "upstream.trending.url is required")
	}
	if c.Upstream.DogCEO.BaseURL == "" {
		issues = append(issues, "upstream.dogceo.base_url is required")
	}
	if c.Upstream.TheDogAPI.BaseURL == "" {
		issues = append(issues, "upstream.thedogapi.base_url is required")
	}
	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies VOX_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VOX_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("VOX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VOX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if key := os.Getenv("VOX_POLYGON_API_KEY"); key != "" {
		config.Upstream.Polygon.APIKey = key
	}
	if u := os.Getenv("VOX_POLYGON_URL"); u != "" {
		config.Upstream.Polygon.BaseURL = u
	}
	if u := os.Getenv("VOX_TRENDING_URL"); u != "" {
		config.Upstream.Trending.URL = u
	}
	if u := os.Getenv("VOX_DOGCEO_URL"); u != "" {
		config.Upstream.DogCEO.BaseURL = u
	}
	if u := os.Getenv("VOX_THEDOGAPI_URL"); u != "" {
		config.Upstream.TheDogAPI.BaseURL = u
	}
	if key := os.Getenv("VOX_THEDOGAPI_KEY"); key != "" {
		config.Upstream.TheDogAPI.APIKey = key
	}
	if ttl := os.Getenv("VOX_CACHE_TTL"); ttl != "" {
		config.Upstream.Cache.TTL = ttl
	}
	if level := os.Getenv("VOX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if outputs := os.Getenv("VOX_LOG_OUTPUTS"); outputs != "" {
		config.Logging.Outputs = strings.Split(outputs, ",")
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Redact masks a secret for logging, keeping only whether it is set and its last four characters.
func Redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
