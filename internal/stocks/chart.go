// Package stocks loads price history into the chart canvas and the ranked
// reddit list into the trending table.
package stocks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
)

// ErrInvalidRange is returned when the range is not a positive day count.
var ErrInvalidRange = errors.New("range must be a positive number of days")

// AggregatesSource fetches daily closes for a ticker.
type AggregatesSource interface {
	Aggregates(ctx context.Context, ticker string, window models.DateWindow) (models.Series, error)
}

// ChartOptions controls chart labelling.
type ChartOptions struct {
	DateLayout string         // label layout, default "1/2/2006"
	Location   *time.Location // label timezone, default time.Local
	Color      string         // line color, default "blue"
	Now        func() time.Time
}

// ChartLoader fetches a price series and binds it to a chart canvas.
type ChartLoader struct {
	source AggregatesSource
	logger *common.Logger
	opts   ChartOptions
}

// NewChartLoader creates a loader reading from source.
func NewChartLoader(source AggregatesSource, logger *common.Logger, opts ChartOptions) *ChartLoader {
	if opts.DateLayout == "" {
		opts.DateLayout = "1/2/2006"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Color == "" {
		opts.Color = "blue"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &ChartLoader{source: source, logger: logger, opts: opts}
}

// ParseRange parses the range select value.
func ParseRange(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return days, nil
}

// Fetch normalizes ticker and fetches the window of days ending today.
func (l *ChartLoader) Fetch(ctx context.Context, ticker string, days int) (models.Series, error) {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return models.Series{}, errors.New("ticker is required")
	}
	if days <= 0 {
		return models.Series{}, fmt.Errorf("%w: %d", ErrInvalidRange, days)
	}
	window := models.WindowEndingAt(l.opts.Now(), days)
	return l.source.Aggregates(ctx, ticker, window)
}

// Spec builds the line chart for series: one localized date label and one
// close per bar, in fetch order, as a single dataset labelled with the ticker.
func (l *ChartLoader) Spec(series models.Series) page.ChartSpec {
	labels := make([]string, len(series.Points))
	data := make([]float64, len(series.Points))
	for i, p := range series.Points {
		labels[i] = p.Time.In(l.opts.Location).Format(l.opts.DateLayout)
		data[i] = p.Close.InexactFloat64()
	}
	return page.ChartSpec{
		Type:   "line",
		Labels: labels,
		Datasets: []page.Dataset{{
			Label:       series.Ticker,
			Data:        data,
			BorderColor: l.opts.Color,
			Fill:        false,
		}},
	}
}

// Load reads the form and replaces the chart on canvas. It is a no-op when
// either container is absent or either field is empty. Failures are logged
// and leave the canvas untouched; a response that arrives after a newer
// Load on the same canvas is discarded. It reports whether the chart was
// replaced.
func (l *ChartLoader) Load(ctx context.Context, form *page.StockForm, canvas *page.Chart) bool {
	if form == nil || canvas == nil {
		return false
	}
	rawTicker, rawRange := form.Values()
	if strings.TrimSpace(rawTicker) == "" || strings.TrimSpace(rawRange) == "" {
		return false
	}

	days, err := ParseRange(rawRange)
	if err != nil {
		l.logger.Warn().Str("range", rawRange).Err(err).Msg("chart load skipped")
		return false
	}

	token := canvas.Begin()
	series, err := l.Fetch(ctx, rawTicker, days)
	if err != nil {
		l.logger.Error().Str("ticker", models.NormalizeTicker(rawTicker)).Int("range", days).Err(err).Msg("error fetching stock data")
		return false
	}

	if !canvas.Render(token, l.Spec(series)) {
		l.logger.Debug().Str("ticker", series.Ticker).Int64("token", int64(token)).Msg("discarding stale chart response")
		return false
	}
	return true
}
