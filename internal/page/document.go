// Package page models the containers a rendered page exposes to loaders and
// voice commands: the stock form, chart canvas, trending table, dog carousel
// and breed browser. A Document owns only the containers its page has.
package page

import (
	"sync"
)

// Kind identifies one of the portal pages.
type Kind string

const (
	Home   Kind = "home"
	Stocks Kind = "stocks"
	Dogs   Kind = "dogs"
)

// Path returns the route that serves the page.
func (k Kind) Path() string {
	switch k {
	case Stocks:
		return "/stocks"
	case Dogs:
		return "/dogs"
	default:
		return "/"
	}
}

// ParseKind maps a route or page name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "home", "index", "/", "/index.html":
		return Home, true
	case "stocks", "/stocks", "/stocks.html":
		return Stocks, true
	case "dogs", "/dogs", "/dogs.html":
		return Dogs, true
	}
	return "", false
}

// Document is one built page. Absent containers are nil.
type Document struct {
	Kind Kind

	Form     *StockForm
	Chart    *Chart
	Trending *Table
	Carousel *Carousel
	Breeds   *BreedBrowser

	mu         sync.Mutex
	background string
	alerts     []string
}

// New builds the document for kind with that page's containers.
func New(kind Kind) *Document {
	d := &Document{Kind: kind}
	switch kind {
	case Home:
		d.Trending = NewTable()
	case Stocks:
		d.Form = &StockForm{}
		d.Chart = NewChart()
		d.Trending = NewTable()
	case Dogs:
		d.Carousel = NewCarousel()
		d.Breeds = NewBreedBrowser()
	}
	return d
}

// SetBackground stores the raw color token. No validation: an invalid token
// is accepted and simply has no visual effect in the browser.
func (d *Document) SetBackground(color string) {
	d.mu.Lock()
	d.background = color
	d.mu.Unlock()
}

// Background returns the current background token.
func (d *Document) Background() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.background
}

// Alert records an acknowledgment shown to the user.
func (d *Document) Alert(message string) {
	d.mu.Lock()
	d.alerts = append(d.alerts, message)
	d.mu.Unlock()
}

// Alerts returns the acknowledgments shown so far.
func (d *Document) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// Close tears the page down, releasing every container subscription.
func (d *Document) Close() {
	if d.Breeds != nil {
		d.Breeds.Teardown()
	}
}
