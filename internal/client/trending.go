package client

import (
	"context"

	"github.com/bobmcallan/vox-portal/internal/models"
)

// Trending fetches the ranked reddit stock list in upstream order.
func (c *UpstreamClient) Trending(ctx context.Context) ([]models.TrendingStock, error) {
	body, err := c.get(ctx, UpstreamTrending, c.opts.TrendingURL, c.opts.TrendingURL, nil, true)
	if err != nil {
		return nil, err
	}

	var stocks []models.TrendingStock
	if err := decode(UpstreamTrending, body, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}
