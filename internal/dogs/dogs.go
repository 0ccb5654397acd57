// Package dogs loads the dog image carousel and the breed browser.
package dogs

import (
	"context"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
)

// Source fetches dog images and breed metadata.
type Source interface {
	RandomDogImages(ctx context.Context, count int) ([]models.DogImage, error)
	Breeds(ctx context.Context) ([]models.Breed, error)
}

// Loader fills the carousel and breed browser containers.
type Loader struct {
	source     Source
	logger     *common.Logger
	imageCount int
}

// NewLoader creates a loader fetching imageCount images per carousel load.
func NewLoader(source Source, logger *common.Logger, imageCount int) *Loader {
	if imageCount <= 0 {
		imageCount = 10
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Loader{source: source, logger: logger, imageCount: imageCount}
}

// Images fetches one batch of random image URLs.
func (l *Loader) Images(ctx context.Context) ([]models.DogImage, error) {
	return l.source.RandomDogImages(ctx, l.imageCount)
}

// Breeds fetches the full breed list.
func (l *Loader) Breeds(ctx context.Context) ([]models.Breed, error) {
	return l.source.Breeds(ctx)
}

// LoadCarousel replaces the carousel with one image per fetched URL.
// No retry and no deduplication; on failure the carousel is left as is.
func (l *Loader) LoadCarousel(ctx context.Context, carousel *page.Carousel) error {
	if carousel == nil {
		return nil
	}
	images, err := l.Images(ctx)
	if err != nil {
		l.logger.Error().Err(err).Msg("error loading dog images")
		return err
	}
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = string(img)
	}
	carousel.Replace(urls)
	return nil
}

// LoadBreeds replaces the breed buttons with one per fetched record.
func (l *Loader) LoadBreeds(ctx context.Context, browser *page.BreedBrowser) error {
	if browser == nil {
		return nil
	}
	breeds, err := l.Breeds(ctx)
	if err != nil {
		l.logger.Error().Err(err).Msg("error loading dog breeds")
		return err
	}
	browser.Replace(breeds)
	return nil
}
