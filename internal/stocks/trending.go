package stocks

import (
	"context"
	"net/url"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
)

// TrendingSource fetches the ranked reddit stock list.
type TrendingSource interface {
	Trending(ctx context.Context) ([]models.TrendingStock, error)
}

// TrendingLoader renders the top entries of the ranked list into a table.
type TrendingLoader struct {
	source   TrendingSource
	logger   *common.Logger
	quoteURL string
	topN     int
}

// NewTrendingLoader creates a loader; quoteURL is prefixed to each ticker
// to form its outbound link.
func NewTrendingLoader(source TrendingSource, logger *common.Logger, quoteURL string, topN int) *TrendingLoader {
	if topN <= 0 {
		topN = 5
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &TrendingLoader{source: source, logger: logger, quoteURL: quoteURL, topN: topN}
}

// Top fetches the list and keeps the first entries in upstream order.
func (l *TrendingLoader) Top(ctx context.Context) ([]models.TrendingStock, error) {
	all, err := l.source.Trending(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > l.topN {
		all = all[:l.topN]
	}
	return all, nil
}

// Rows maps entries to table rows.
func (l *TrendingLoader) Rows(entries []models.TrendingStock) []page.Row {
	rows := make([]page.Row, len(entries))
	for i, s := range entries {
		rows[i] = page.Row{
			Ticker:    s.Ticker,
			QuoteURL:  l.quoteURL + url.PathEscape(s.Ticker),
			Comments:  s.CommentText(),
			Sentiment: s.Sentiment,
			Glyph:     s.Glyph(),
		}
	}
	return rows
}

// Load replaces every row of table with the top entries. On failure the
// error is logged and the table keeps its previous rows.
func (l *TrendingLoader) Load(ctx context.Context, table *page.Table) error {
	if table == nil {
		return nil
	}
	top, err := l.Top(ctx)
	if err != nil {
		l.logger.Error().Err(err).Msg("error loading reddit stocks")
		return err
	}
	table.ReplaceRows(l.Rows(top))
	return nil
}
