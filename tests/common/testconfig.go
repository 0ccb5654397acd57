package common

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TestConfig is read from tests/ui/test_config.toml. VOX_TEST_URL and
// VOX_TEST_RESULTS_DIR override the file.
type TestConfig struct {
	Results struct {
		Dir string `toml:"dir"`
	} `toml:"results"`
	Server struct {
		URL string `toml:"url"`
	} `toml:"server"`
	Browser struct {
		Headless    bool `toml:"headless"`
		TimeoutSecs int  `toml:"timeout_seconds"`
	} `toml:"browser"`
}

var (
	loadOnce   sync.Once
	testConfig TestConfig

	runDirOnce sync.Once
	runDir     string
)

// LoadTestConfig returns the shared test configuration.
func LoadTestConfig() *TestConfig {
	loadOnce.Do(func() {
		testConfig.Results.Dir = "tests/results"
		testConfig.Server.URL = "http://localhost:4251"
		testConfig.Browser.Headless = true
		testConfig.Browser.TimeoutSecs = 30

		root := FindProjectRoot()
		data, err := os.ReadFile(filepath.Join(root, "tests", "ui", "test_config.toml"))
		if err == nil {
			toml.Unmarshal(data, &testConfig)
		}
		if !filepath.IsAbs(testConfig.Results.Dir) {
			testConfig.Results.Dir = filepath.Join(root, testConfig.Results.Dir)
		}
	})
	if url := os.Getenv("VOX_TEST_URL"); url != "" {
		testConfig.Server.URL = url
	}
	return &testConfig
}

// BrowserConfig returns the configured headless Chrome settings.
func (c *TestConfig) BrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless: c.Browser.Headless,
		Timeout:  time.Duration(c.Browser.TimeoutSecs) * time.Second,
	}
}

// ResultsDir returns the directory for this run's screenshots and logs,
// one timestamped folder per test binary invocation.
func ResultsDir(sub ...string) string {
	runDirOnce.Do(func() {
		if dir := os.Getenv("VOX_TEST_RESULTS_DIR"); dir != "" {
			runDir, _ = filepath.Abs(dir)
			return
		}
		runDir = filepath.Join(LoadTestConfig().Results.Dir, time.Now().Format("2006-01-02-15-04-05"))
	})
	dir := filepath.Join(append([]string{runDir}, sub...)...)
	os.MkdirAll(dir, 0o755)
	return dir
}
