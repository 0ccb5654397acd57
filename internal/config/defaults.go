package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		Upstream: UpstreamConfig{
			Polygon: PolygonConfig{
				BaseURL: "https://api.polygon.io",
				Limit:   120,
			},
			Trending: TrendingConfig{
				URL:      "https://tradestie.com/api/v1/apps/reddit",
				QuoteURL: "https://finance.yahoo.com/quote/",
				TopN:     5,
			},
			DogCEO: DogCEOConfig{
				BaseURL: "https://dog.ceo",
				Count:   10,
			},
			TheDogAPI: TheDogAPIConfig{
				BaseURL: "https://api.thedogapi.com",
			},
			Cache: CacheConfig{
				TTL:        "0s",
				MaxEntries: 64,
			},
			Timeout: "10s",
		},
		Chart: ChartConfig{
			DateLayout:   "1/2/2006",
			Timezone:     "Local",
			DefaultRange: 30,
		},
		Voice: VoiceConfig{
			AutoRestart: true,
			Continuous:  false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
