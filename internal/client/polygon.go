package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/shopspring/decimal"
)

// aggregateBar is one daily bar; only the timestamp and close are used.
type aggregateBar struct {
	T int64           `json:"t"` // epoch millis
	C decimal.Decimal `json:"c"`
}

// aggregatesURL builds the daily aggregates URL. When redacted is true the
// API key is replaced so the result can be logged.
func (c *UpstreamClient) aggregatesURL(ticker string, window models.DateWindow, redacted bool) string {
	key := c.opts.PolygonKey
	if redacted {
		key = "REDACTED"
	}
	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	q.Set("limit", strconv.Itoa(c.opts.PolygonLimit))
	q.Set("apiKey", key)

	return c.opts.PolygonURL + "/v2/aggs/ticker/" + url.PathEscape(ticker) +
		"/range/1/day/" + window.FromISO() + "/" + window.ToISO() + "?" + q.Encode()
}

// Aggregates fetches daily closes for ticker over window, ascending.
// A body without a results list yields a DataFormatError.
func (c *UpstreamClient) Aggregates(ctx context.Context, ticker string, window models.DateWindow) (models.Series, error) {
	rawURL := c.aggregatesURL(ticker, window, false)
	body, err := c.get(ctx, UpstreamPolygon, rawURL, c.aggregatesURL(ticker, window, true), nil, false)
	if err != nil {
		return models.Series{}, err
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := decode(UpstreamPolygon, body, &envelope); err != nil {
		return models.Series{}, err
	}
	results := bytes.TrimSpace(envelope.Results)
	if len(results) == 0 || results[0] != '[' {
		return models.Series{}, &DataFormatError{Upstream: UpstreamPolygon, Reason: "results is missing or not a list"}
	}

	var bars []aggregateBar
	if err := json.Unmarshal(results, &bars); err != nil {
		return models.Series{}, &DataFormatError{Upstream: UpstreamPolygon, Reason: "malformed bar", Err: err}
	}

	series := models.Series{
		Ticker: ticker,
		Window: window,
		Points: make([]models.PricePoint, len(bars)),
	}
	for i, bar := range bars {
		series.Points[i] = models.PricePoint{
			Time:  time.UnixMilli(bar.T),
			Close: bar.C,
		}
	}
	return series, nil
}
