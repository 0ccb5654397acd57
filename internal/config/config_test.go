package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4251 {
		t.Errorf("expected default port 4251, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.Upstream.Polygon.Limit != 120 {
		t.Errorf("expected default polygon limit 120, got %d", cfg.Upstream.Polygon.Limit)
	}
	if cfg.Upstream.Trending.TopN != 5 {
		t.Errorf("expected default top_n 5, got %d", cfg.Upstream.Trending.TopN)
	}
	if cfg.Upstream.DogCEO.Count != 10 {
		t.Errorf("expected default dog image count 10, got %d", cfg.Upstream.DogCEO.Count)
	}
	if cfg.Upstream.Polygon.APIKey != "" {
		t.Error("expected no default polygon api key")
	}
	if !cfg.Voice.AutoRestart || cfg.Voice.Continuous {
		t.Errorf("expected auto_restart=true continuous=false, got %+v", cfg.Voice)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 4251 {
		t.Errorf("expected default port 4251, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
environment = "dev"

[server]
port = 9090
host = "0.0.0.0"

[upstream]
timeout = "3s"

[upstream.polygon]
api_key = "file-key"

[upstream.cache]
ttl = "1m"

[chart]
date_layout = "2006-01-02"
timezone = "UTC"

[logging]
level = "debug"
outputs = ["console", "file"]
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if !cfg.IsDevMode() {
		t.Error("expected dev mode")
	}
	if cfg.Upstream.Polygon.APIKey != "file-key" {
		t.Errorf("expected api key from file, got %q", cfg.Upstream.Polygon.APIKey)
	}
	// Unset keys in a section keep their defaults.
	if cfg.Upstream.Polygon.BaseURL != "https://api.polygon.io" {
		t.Errorf("expected default polygon base url, got %s", cfg.Upstream.Polygon.BaseURL)
	}
	if cfg.UpstreamTimeout() != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.UpstreamTimeout())
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("expected 1m cache ttl, got %s", cfg.CacheTTL())
	}
	if cfg.ChartLocation() != time.UTC {
		t.Errorf("expected UTC chart location, got %s", cfg.ChartLocation())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if len(cfg.Logging.Outputs) != 2 {
		t.Errorf("expected 2 log outputs, got %v", cfg.Logging.Outputs)
	}
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.toml")
	second := filepath.Join(dir, "b.toml")
	os.WriteFile(first, []byte("[server]\nport = 1111\nhost = \"a\"\n"), 0644)
	os.WriteFile(second, []byte("[server]\nport = 2222\n"), 0644)

	cfg, err := LoadFromFiles(first, second)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 2222 {
		t.Errorf("expected port 2222, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "a" {
		t.Errorf("expected host a, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/vox.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("[server\nport = "), 0644)

	_, err := LoadFromFiles(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "file 1 of 1") {
		t.Errorf("expected file position in error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOX_SERVER_PORT", "7000")
	t.Setenv("VOX_SERVER_HOST", "example.local")
	t.Setenv("VOX_POLYGON_API_KEY", "env-key")
	t.Setenv("VOX_TRENDING_URL", "http://trending.local/api")
	t.Setenv("VOX_LOG_OUTPUTS", "console,file")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "example.local" {
		t.Errorf("expected host example.local, got %s", cfg.Server.Host)
	}
	if cfg.Upstream.Polygon.APIKey != "env-key" {
		t.Errorf("expected env api key, got %q", cfg.Upstream.Polygon.APIKey)
	}
	if cfg.Upstream.Trending.URL != "http://trending.local/api" {
		t.Errorf("unexpected trending url %s", cfg.Upstream.Trending.URL)
	}
	if len(cfg.Logging.Outputs) != 2 || cfg.Logging.Outputs[1] != "file" {
		t.Errorf("unexpected outputs %v", cfg.Logging.Outputs)
	}
}

func TestEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("VOX_SERVER_PORT", "not-a-port")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 4251 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 4251 || cfg.Server.Host != "localhost" {
		t.Errorf("zero flags should not override: %+v", cfg.Server)
	}

	ApplyFlagOverrides(cfg, 8080, "0.0.0.0")
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	issues := cfg.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0], "api_key") {
		t.Fatalf("expected only the api key issue in prod, got %v", issues)
	}

	cfg.Environment = "dev"
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("dev mode should not require the api key, got %v", issues)
	}

	cfg.Environment = "prod"
	cfg.Upstream.Polygon.APIKey = "k"
	cfg.Server.Port = 0
	cfg.Upstream.Trending.URL = ""
	if issues := cfg.Validate(); len(issues) != 2 {
		t.Errorf("expected 2 issues, got %v", issues)
	}
}

func TestDurationsFallBack(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Upstream.Timeout = "bogus"
	cfg.Upstream.Cache.TTL = "-5s"
	cfg.Chart.Timezone = "Not/AZone"

	if cfg.UpstreamTimeout() != 10*time.Second {
		t.Errorf("expected 10s fallback, got %s", cfg.UpstreamTimeout())
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("expected caching disabled, got %s", cfg.CacheTTL())
	}
	if cfg.ChartLocation() != time.Local {
		t.Errorf("expected Local fallback, got %s", cfg.ChartLocation())
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if got := Discover(DefaultFileName); got != "" {
		t.Errorf("expected no config in empty dir, got %s", got)
	}

	os.MkdirAll(filepath.Join(dir, "config"), 0755)
	os.WriteFile(filepath.Join(dir, "config", DefaultFileName), []byte("[server]\nport = 1\n"), 0644)
	if got := Discover(DefaultFileName); got != filepath.Join("config", DefaultFileName) {
		t.Errorf("expected config/%s, got %q", DefaultFileName, got)
	}

	os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(""), 0644)
	if got := Discover(DefaultFileName); got != DefaultFileName {
		t.Errorf("expected cwd file to win over config/, got %q", got)
	}
}

func TestSearchPaths_Deduplicated(t *testing.T) {
	paths := SearchPaths(DefaultFileName)
	seen := map[string]bool{}
	for _, p := range paths {
		abs, _ := filepath.Abs(p)
		if seen[abs] {
			t.Errorf("duplicate search path %s", p)
		}
		seen[abs] = true
	}
	if len(paths) < 3 {
		t.Errorf("expected at least the cwd candidates, got %v", paths)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "(unset)"},
		{"abc", "****"},
		{"abcd1234", "****1234"},
	}
	for _, tt := range tests {
		if got := Redact(tt.in); got != tt.want {
			t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
