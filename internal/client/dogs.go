package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bobmcallan/vox-portal/internal/models"
)

// RandomDogImages fetches count random image URLs across breeds.
// Never cached: every call should return a fresh set.
func (c *UpstreamClient) RandomDogImages(ctx context.Context, count int) ([]models.DogImage, error) {
	u := c.opts.DogCEOURL + "/api/breeds/image/random/" + strconv.Itoa(count)
	body, err := c.get(ctx, UpstreamDogImages, u, u, nil, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message []models.DogImage `json:"message"`
		Status  string            `json:"status"`
	}
	if err := decode(UpstreamDogImages, body, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

// Breeds fetches the full breed list in upstream order.
func (c *UpstreamClient) Breeds(ctx context.Context) ([]models.Breed, error) {
	u := c.opts.TheDogAPIURL + "/v1/breeds"

	var header http.Header
	if c.opts.TheDogAPIKey != "" {
		header = http.Header{"X-Api-Key": []string{c.opts.TheDogAPIKey}}
	}

	body, err := c.get(ctx, UpstreamBreeds, u, u, header, true)
	if err != nil {
		return nil, err
	}

	var breeds []models.Breed
	if err := decode(UpstreamBreeds, body, &breeds); err != nil {
		return nil, err
	}
	return breeds, nil
}
