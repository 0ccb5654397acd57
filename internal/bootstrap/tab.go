package bootstrap

import (
	"context"
	"sync"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
	"github.com/bobmcallan/vox-portal/internal/stocks"
)

// Tab is a headless page runtime. It holds one built document at a time and
// applies voice actions to it directly.
type Tab struct {
	boot   *Bootstrapper
	chart  *stocks.ChartLoader
	logger *common.Logger

	nav     sync.Mutex // serialises navigations
	mu      sync.RWMutex
	doc     *page.Document
	release []func()
	history []page.Kind
}

// NewTab creates a tab with no page open.
func NewTab(boot *Bootstrapper, chart *stocks.ChartLoader, logger *common.Logger) *Tab {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Tab{boot: boot, chart: chart, logger: logger}
}

// Open tears down the current page and builds kind in its place.
func (t *Tab) Open(ctx context.Context, kind page.Kind) Report {
	t.nav.Lock()
	defer t.nav.Unlock()

	t.teardown()

	doc, report := t.boot.Build(ctx, kind)
	var release []func()
	if doc.Breeds != nil {
		release = append(release, doc.Breeds.Subscribe(func(i int, b models.Breed) {
			t.logger.Info().Int("index", i).Str("breed", b.Name).Msg("breed selected")
		}))
	}

	t.mu.Lock()
	t.doc = doc
	t.release = release
	t.history = append(t.history, kind)
	t.mu.Unlock()

	t.logger.Info().Str("page", string(kind)).Str("path", kind.Path()).Msg("page opened")
	return report
}

func (t *Tab) teardown() {
	t.mu.Lock()
	doc, release := t.doc, t.release
	t.doc, t.release = nil, nil
	t.mu.Unlock()

	for _, fn := range release {
		fn()
	}
	if doc != nil {
		doc.Close()
	}
}

// Close tears down the open page.
func (t *Tab) Close() {
	t.nav.Lock()
	defer t.nav.Unlock()
	t.teardown()
}

// Document returns the open page, nil before the first Open.
func (t *Tab) Document() *page.Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.doc
}

// History lists the pages opened so far.
func (t *Tab) History() []page.Kind {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]page.Kind(nil), t.history...)
}

func (t *Tab) Alert(message string) {
	if doc := t.Document(); doc != nil {
		doc.Alert(message)
		t.logger.Info().Str("message", message).Msg("alert")
	}
}

func (t *Tab) SetBackground(color string) {
	if doc := t.Document(); doc != nil {
		doc.SetBackground(color)
		t.logger.Info().Str("color", color).Msg("background changed")
	}
}

func (t *Tab) Navigate(ctx context.Context, to page.Kind) {
	t.Open(ctx, to)
}

// LookupStock writes ticker into the form and loads its chart. Pages
// without a ticker field ignore it.
func (t *Tab) LookupStock(ctx context.Context, ticker string) {
	doc := t.Document()
	if doc == nil || doc.Form == nil || t.chart == nil {
		return
	}
	doc.Form.SetTicker(ticker)
	t.chart.Load(ctx, doc.Form, doc.Chart)
}

// SelectBreed activates the first breed button whose label matches.
func (t *Tab) SelectBreed(label string) {
	doc := t.Document()
	if doc == nil || doc.Breeds == nil {
		return
	}
	doc.Breeds.ClickLabel(label)
}
