// Package portal wires the loaders, the voice router and the page
// bootstrapper into the operations the HTTP handlers and MCP tools expose.
package portal

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bobmcallan/vox-portal/internal/bootstrap"
	"github.com/bobmcallan/vox-portal/internal/client"
	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/dogs"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
	"github.com/bobmcallan/vox-portal/internal/stocks"
	"github.com/bobmcallan/vox-portal/internal/voice"
)

// ErrMissingTicker is returned when a chart is requested without a ticker.
var ErrMissingTicker = errors.New("ticker is required")

// Service is the portal's operation surface.
type Service struct {
	Chart    *stocks.ChartLoader
	Trending *stocks.TrendingLoader
	Dogs     *dogs.Loader
	Boot     *bootstrap.Bootstrapper
	Router   *voice.Router

	logger       *common.Logger
	defaultRange int
}

// New builds the service against the configured upstreams.
func New(cfg *config.Config, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	upstream := client.NewUpstreamClient(client.OptionsFromConfig(cfg), logger)

	chart := stocks.NewChartLoader(upstream, logger, stocks.ChartOptions{
		DateLayout: cfg.Chart.DateLayout,
		Location:   cfg.ChartLocation(),
	})
	trending := stocks.NewTrendingLoader(upstream, logger, cfg.Upstream.Trending.QuoteURL, cfg.Upstream.Trending.TopN)
	dogLoader := dogs.NewLoader(upstream, logger, cfg.Upstream.DogCEO.Count)
	boot := bootstrap.New(trending, dogLoader, cfg.Chart.DefaultRange, logger)

	return &Service{
		Chart:        chart,
		Trending:     trending,
		Dogs:         dogLoader,
		Boot:         boot,
		Router:       voice.NewDefaultRouter(logger),
		logger:       logger,
		defaultRange: boot.DefaultRange(),
	}
}

// DefaultRange is the chart range used when none is given.
func (s *Service) DefaultRange() int { return s.defaultRange }

// ChartResult is a fetched series rendered as a line chart.
type ChartResult struct {
	Ticker string         `json:"ticker"`
	Range  int            `json:"range"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Chart  page.ChartSpec `json:"chart"`
}

// StockChart fetches rng days of closes for ticker. An empty rng uses the
// default range.
func (s *Service) StockChart(ctx context.Context, ticker, rng string) (ChartResult, error) {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return ChartResult{}, ErrMissingTicker
	}
	days := s.defaultRange
	if strings.TrimSpace(rng) != "" {
		var err error
		if days, err = stocks.ParseRange(rng); err != nil {
			return ChartResult{}, err
		}
	}

	series, err := s.Chart.Fetch(ctx, ticker, days)
	if err != nil {
		return ChartResult{}, err
	}
	return ChartResult{
		Ticker: series.Ticker,
		Range:  days,
		From:   series.Window.FromISO(),
		To:     series.Window.ToISO(),
		Chart:  s.Chart.Spec(series),
	}, nil
}

// TrendingStocks returns the top trending rows.
func (s *Service) TrendingStocks(ctx context.Context) ([]page.Row, error) {
	top, err := s.Trending.Top(ctx)
	if err != nil {
		return nil, err
	}
	return s.Trending.Rows(top), nil
}

// DogImages returns one batch of carousel images.
func (s *Service) DogImages(ctx context.Context) ([]page.Image, error) {
	c := page.NewCarousel()
	if err := s.Dogs.LoadCarousel(ctx, c); err != nil {
		return nil, err
	}
	return c.Images(), nil
}

// DogBreeds returns every breed record.
func (s *Service) DogBreeds(ctx context.Context) ([]models.Breed, error) {
	return s.Dogs.Breeds(ctx)
}

// VoiceRequest is an utterance from a client page.
type VoiceRequest struct {
	Phrases []string        `json:"phrases"`
	Page    voice.PageState `json:"page"`
}

// VoiceResult is what the client must apply to its page.
type VoiceResult struct {
	Matched bool           `json:"matched"`
	Command string         `json:"command,omitempty"`
	Args    []string       `json:"args,omitempty"`
	Effects []voice.Effect `json:"effects"`
}

// Voice dispatches the phrase alternatives against the client's page state.
func (s *Service) Voice(ctx context.Context, req VoiceRequest) VoiceResult {
	rec := voice.NewRecorder(req.Page)
	m, ok := s.Router.Dispatch(ctx, rec, req.Phrases...)
	return VoiceResult{Matched: ok, Command: m.Pattern, Args: m.Args, Effects: rec.Effects()}
}

// BuildPage builds and bootstraps kind. On the stocks page a ticker
// preloads the chart the way submitting the form would.
func (s *Service) BuildPage(ctx context.Context, kind page.Kind, ticker, rng string) (*page.Document, bootstrap.Report) {
	doc, report := s.Boot.Build(ctx, kind)
	if doc.Form != nil && strings.TrimSpace(ticker) != "" {
		if strings.TrimSpace(rng) == "" {
			rng = strconv.Itoa(s.defaultRange)
		}
		doc.Form.Set(models.NormalizeTicker(ticker), rng)
		s.Chart.Load(ctx, doc.Form, doc.Chart)
	}
	return doc, report
}

// NewTab opens a headless tab on kind.
func (s *Service) NewTab(ctx context.Context, kind page.Kind) *bootstrap.Tab {
	tab := bootstrap.NewTab(s.Boot, s.Chart, s.logger)
	tab.Open(ctx, kind)
	return tab
}
