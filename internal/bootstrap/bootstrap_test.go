package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/goleak"

	"github.com/bobmcallan/vox-portal/internal/dogs"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
	"github.com/bobmcallan/vox-portal/internal/stocks"
	"github.com/bobmcallan/vox-portal/internal/voice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _ voice.Actions = (*Tab)(nil)

type fakeTrending struct {
	entries []models.TrendingStock
	err     error
}

func (f *fakeTrending) Trending(context.Context) ([]models.TrendingStock, error) {
	return f.entries, f.err
}

type fakeDogs struct {
	images    []models.DogImage
	imagesErr error
	breeds    []models.Breed
	breedsErr error

	// When set, each call waits for the other to start.
	imagesStarted chan struct{}
	breedsStarted chan struct{}
}

func (f *fakeDogs) RandomDogImages(_ context.Context, count int) ([]models.DogImage, error) {
	if f.imagesStarted != nil {
		close(f.imagesStarted)
		select {
		case <-f.breedsStarted:
		case <-time.After(2 * time.Second):
			return nil, errors.New("breeds loader never started")
		}
	}
	return f.images, f.imagesErr
}

func (f *fakeDogs) Breeds(context.Context) ([]models.Breed, error) {
	if f.breedsStarted != nil {
		close(f.breedsStarted)
		select {
		case <-f.imagesStarted:
		case <-time.After(2 * time.Second):
			return nil, errors.New("carousel loader never started")
		}
	}
	return f.breeds, f.breedsErr
}

type fakeAggregates struct{}

func (fakeAggregates) Aggregates(_ context.Context, ticker string, w models.DateWindow) (models.Series, error) {
	return models.Series{
		Ticker: ticker,
		Window: w,
		Points: []models.PricePoint{
			{Time: w.From, Close: decimal.RequireFromString("10.5")},
			{Time: w.To, Close: decimal.RequireFromString("11.25")},
		},
	}, nil
}

func trendingEntries() []models.TrendingStock {
	return []models.TrendingStock{
		{Ticker: "GME", Comments: json.RawMessage("120"), Sentiment: "Bullish"},
		{Ticker: "AMC", Comments: json.RawMessage("80"), Sentiment: "Bearish"},
	}
}

func newBootstrapper(tr *fakeTrending, dg *fakeDogs) *Bootstrapper {
	return New(
		stocks.NewTrendingLoader(tr, nil, "https://finance.yahoo.com/quote/", 5),
		dogs.NewLoader(dg, nil, 10),
		30,
		nil,
	)
}

func TestRun_ProbesContainersPerPage(t *testing.T) {
	b := newBootstrapper(&fakeTrending{entries: trendingEntries()}, &fakeDogs{
		images: []models.DogImage{"https://images.dog.ceo/a.jpg"},
		breeds: []models.Breed{{Name: "Akita"}},
	})

	tests := []struct {
		kind page.Kind
		ran  []string
	}{
		{page.Home, []string{LoaderTrending}},
		{page.Stocks, []string{LoaderTrending}},
		{page.Dogs, []string{LoaderBreeds, LoaderCarousel}},
	}
	for _, tt := range tests {
		doc, report := b.Build(context.Background(), tt.kind)
		if !reflect.DeepEqual(report.Ran, tt.ran) {
			t.Errorf("%s: ran %v, want %v", tt.kind, report.Ran, tt.ran)
		}
		if len(report.Failed) != 0 {
			t.Errorf("%s: unexpected failures %v", tt.kind, report.Failed)
		}
		doc.Close()
	}
}

func TestBuild_StockFormStartsWithDefaultRange(t *testing.T) {
	b := newBootstrapper(&fakeTrending{}, &fakeDogs{})
	doc, _ := b.Build(context.Background(), page.Stocks)
	ticker, rng := doc.Form.Values()
	if ticker != "" || rng != "30" {
		t.Errorf("form = %q/%q, want empty ticker and range 30", ticker, rng)
	}
	if !doc.Trending.Loaded() {
		t.Error("expected trending table populated")
	}
}

func TestRun_FailureIsIsolated(t *testing.T) {
	b := newBootstrapper(&fakeTrending{}, &fakeDogs{
		imagesErr: errors.New("dog.ceo down"),
		breeds:    []models.Breed{{Name: "Akita"}, {Name: "Beagle"}},
	})

	doc, report := b.Build(context.Background(), page.Dogs)
	if _, ok := report.Failed[LoaderCarousel]; !ok || len(report.Failed) != 1 {
		t.Fatalf("expected only the carousel to fail, got %v", report.Failed)
	}
	if len(doc.Carousel.Images()) != 0 {
		t.Error("carousel should stay empty")
	}
	if got := doc.Breeds.Labels(); !reflect.DeepEqual(got, []string{"Akita", "Beagle"}) {
		t.Errorf("breeds = %v", got)
	}
}

func TestRun_LoadersRunConcurrently(t *testing.T) {
	dg := &fakeDogs{
		images:        []models.DogImage{"a"},
		breeds:        []models.Breed{{Name: "Akita"}},
		imagesStarted: make(chan struct{}),
		breedsStarted: make(chan struct{}),
	}
	b := newBootstrapper(&fakeTrending{}, dg)

	_, report := b.Build(context.Background(), page.Dogs)
	if len(report.Failed) != 0 {
		t.Errorf("expected both loaders to overlap, got %v", report.Failed)
	}
}

func TestRun_NilLoadersSkipped(t *testing.T) {
	b := New(nil, nil, 0, nil)
	doc, report := b.Build(context.Background(), page.Dogs)
	if len(report.Ran) != 0 {
		t.Errorf("expected no loaders, ran %v", report.Ran)
	}
	if b.DefaultRange() != 30 {
		t.Errorf("expected range fallback 30, got %d", b.DefaultRange())
	}
	doc.Close()
}

func newTab() *Tab {
	b := newBootstrapper(&fakeTrending{entries: trendingEntries()}, &fakeDogs{
		images: []models.DogImage{"a", "b"},
		breeds: []models.Breed{{Name: "Affenpinscher", Temperament: "Loyal", LifeSpan: "10 - 12 years"}, {Name: "Akita", LifeSpan: "10 - 14 years"}},
	})
	chart := stocks.NewChartLoader(fakeAggregates{}, nil, stocks.ChartOptions{Location: time.UTC})
	return NewTab(b, chart, nil)
}

func TestTab_VoiceNavigationTearsDownPreviousPage(t *testing.T) {
	tab := newTab()
	defer tab.Close()
	router := voice.NewDefaultRouter(nil)
	ctx := context.Background()

	tab.Open(ctx, page.Dogs)
	dogsDoc := tab.Document()
	if dogsDoc.Breeds.Subscribers() != 1 {
		t.Fatalf("expected the tab's breed subscription, got %d", dogsDoc.Breeds.Subscribers())
	}

	router.Dispatch(ctx, tab, "load dog breed akita")
	detail := dogsDoc.Breeds.Detail()
	if !detail.Visible || detail.Name != "Akita" || detail.Temperament != models.TemperamentPlaceholder {
		t.Errorf("unexpected detail %+v", detail)
	}

	router.Dispatch(ctx, tab, "navigate to nowhere")
	if tab.Document() != dogsDoc {
		t.Fatal("unknown page must not navigate")
	}

	router.Dispatch(ctx, tab, "navigate to stocks")
	if tab.Document().Kind != page.Stocks {
		t.Fatalf("expected stocks page, got %s", tab.Document().Kind)
	}
	if dogsDoc.Breeds.Subscribers() != 0 {
		t.Errorf("previous page subscriptions not released: %d", dogsDoc.Breeds.Subscribers())
	}
	if got := tab.History(); !reflect.DeepEqual(got, []page.Kind{page.Dogs, page.Stocks}) {
		t.Errorf("history = %v", got)
	}
}

func TestTab_LookupStockRendersChart(t *testing.T) {
	tab := newTab()
	defer tab.Close()
	router := voice.NewDefaultRouter(nil)
	ctx := context.Background()

	tab.Open(ctx, page.Home)
	router.Dispatch(ctx, tab, "lookup aapl")
	if tab.Document().Form != nil {
		t.Fatal("home page has no form")
	}

	tab.Open(ctx, page.Stocks)
	router.Dispatch(ctx, tab, "lookup aapl")
	doc := tab.Document()
	if ticker, _ := doc.Form.Values(); ticker != "AAPL" {
		t.Errorf("ticker field = %q", ticker)
	}
	spec, ok := doc.Chart.Current()
	if !ok {
		t.Fatal("expected a chart")
	}
	if spec.Datasets[0].Label != "AAPL" || !reflect.DeepEqual(spec.Datasets[0].Data, []float64{10.5, 11.25}) {
		t.Errorf("unexpected chart %+v", spec)
	}
}

func TestTab_AlertAndBackground(t *testing.T) {
	tab := newTab()
	defer tab.Close()
	router := voice.NewDefaultRouter(nil)
	ctx := context.Background()

	// No page yet: actions are dropped.
	router.Dispatch(ctx, tab, "hello")

	tab.Open(ctx, page.Home)
	router.Dispatch(ctx, tab, "hello")
	router.Dispatch(ctx, tab, "change the color to not-a-color")

	doc := tab.Document()
	if !reflect.DeepEqual(doc.Alerts(), []string{"Hello World"}) {
		t.Errorf("alerts = %v", doc.Alerts())
	}
	if doc.Background() != "not-a-color" {
		t.Errorf("background = %q", doc.Background())
	}
}
