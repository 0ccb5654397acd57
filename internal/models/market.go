package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// isoDate is the calendar date layout the aggregates API expects.
const isoDate = "2006-01-02"

// NormalizeTicker trims and upper-cases a user-supplied symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DateWindow is the [From, To] calendar range of a price history request.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// WindowEndingAt returns the window that ends on now's UTC calendar date and
// starts exactly days calendar days earlier.
func WindowEndingAt(now time.Time, days int) DateWindow {
	y, m, d := now.UTC().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return DateWindow{
		From: to.AddDate(0, 0, -days),
		To:   to,
	}
}

// FromISO renders the window start as YYYY-MM-DD.
func (w DateWindow) FromISO() string { return w.From.Format(isoDate) }

// ToISO renders the window end as YYYY-MM-DD.
func (w DateWindow) ToISO() string { return w.To.Format(isoDate) }

// PricePoint is one daily bar reduced to its timestamp and close.
type PricePoint struct {
	Time  time.Time       `json:"time"`
	Close decimal.Decimal `json:"close"`
}

// Series is a ticker's closes in fetch (ascending) order.
type Series struct {
	Ticker string       `json:"ticker"`
	Window DateWindow   `json:"-"`
	Points []PricePoint `json:"points"`
}

// TrendingStock is one upstream sentiment entry, passed through unvalidated.
// Comments keeps whatever JSON value the upstream sent.
type TrendingStock struct {
	Ticker    string          `json:"ticker"`
	Comments  json.RawMessage `json:"no_of_comments"`
	Sentiment string          `json:"sentiment"`
}

// CommentText renders the comment count for display. Strings are unquoted,
// null or missing is empty, and any other value is shown as sent.
func (s TrendingStock) CommentText() string {
	raw := bytes.TrimSpace(s.Comments)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			return text
		}
	}
	return string(raw)
}

// Sentiment glyphs. Anything other than exactly "Bullish" is bearish.
const (
	SentimentBullish = "Bullish"
	GlyphBullish     = "📈"
	GlyphBearish     = "📉"
)

// Glyph selects the sentiment glyph by exact, case-sensitive match.
func (s TrendingStock) Glyph() string {
	if s.Sentiment == SentimentBullish {
		return GlyphBullish
	}
	return GlyphBearish
}
