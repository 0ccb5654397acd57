// Package bootstrap builds pages: it creates a page's containers and runs
// the loader for each one that is present.
package bootstrap

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/dogs"
	"github.com/bobmcallan/vox-portal/internal/page"
	"github.com/bobmcallan/vox-portal/internal/stocks"
)

// Loader names reported by Run.
const (
	LoaderTrending = "trending"
	LoaderCarousel = "carousel"
	LoaderBreeds   = "breeds"
)

// Report says which loaders ran for a page and which of them failed.
type Report struct {
	Ran    []string
	Failed map[string]error
}

// Bootstrapper runs the page loaders.
type Bootstrapper struct {
	trending     *stocks.TrendingLoader
	dogs         *dogs.Loader
	defaultRange int
	logger       *common.Logger
}

// New creates a bootstrapper. defaultRange is the preselected chart range.
func New(trending *stocks.TrendingLoader, dogsLoader *dogs.Loader, defaultRange int, logger *common.Logger) *Bootstrapper {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if defaultRange <= 0 {
		defaultRange = 30
	}
	return &Bootstrapper{trending: trending, dogs: dogsLoader, defaultRange: defaultRange, logger: logger}
}

// DefaultRange is the range the stock form starts with.
func (b *Bootstrapper) DefaultRange() int { return b.defaultRange }

// Build creates the document for kind and bootstraps it.
func (b *Bootstrapper) Build(ctx context.Context, kind page.Kind) (*page.Document, Report) {
	doc := page.New(kind)
	if doc.Form != nil {
		doc.Form.Set("", strconv.Itoa(b.defaultRange))
	}
	return doc, b.Run(ctx, doc)
}

// Run probes the document's containers and runs the loader for each one
// present, concurrently. A failing loader is logged and never cancels or
// blocks the others; absent containers are skipped.
func (b *Bootstrapper) Run(ctx context.Context, doc *page.Document) Report {
	type job struct {
		name string
		run  func(context.Context) error
	}
	var jobs []job
	if doc.Trending != nil && b.trending != nil {
		jobs = append(jobs, job{LoaderTrending, func(ctx context.Context) error { return b.trending.Load(ctx, doc.Trending) }})
	}
	if doc.Carousel != nil && b.dogs != nil {
		jobs = append(jobs, job{LoaderCarousel, func(ctx context.Context) error { return b.dogs.LoadCarousel(ctx, doc.Carousel) }})
	}
	if doc.Breeds != nil && b.dogs != nil {
		jobs = append(jobs, job{LoaderBreeds, func(ctx context.Context) error { return b.dogs.LoadBreeds(ctx, doc.Breeds) }})
	}

	report := Report{Failed: make(map[string]error)}
	var mu sync.Mutex

	// Plain Group: errgroup.WithContext would cancel siblings on the first failure.
	var g errgroup.Group
	for _, j := range jobs {
		report.Ran = append(report.Ran, j.name)
		g.Go(func() error {
			if err := j.run(ctx); err != nil {
				mu.Lock()
				report.Failed[j.name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Ran)
	b.logger.Debug().Str("page", string(doc.Kind)).Int("loaders", len(report.Ran)).Int("failed", len(report.Failed)).Msg("page bootstrapped")
	return report
}
