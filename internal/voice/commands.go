package voice

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/page"
)

// Default command patterns.
const (
	PatternHello      = "hello"
	PatternColor      = "change the color to *color"
	PatternNavigate   = "navigate to *page"
	PatternLookup     = "lookup *stock"
	PatternDogBreed   = "load dog breed *breed"
	HelloAcknowledged = "Hello World"
)

// NavigationTarget maps a spoken page token to a page. Unknown tokens
// report false.
func NavigationTarget(token string) (page.Kind, bool) {
	switch cases.Lower(language.Und).String(strings.TrimSpace(token)) {
	case "home", "index":
		return page.Home, true
	case "stocks":
		return page.Stocks, true
	case "dogs":
		return page.Dogs, true
	}
	return "", false
}

// SpokenTicker normalizes a spoken ticker token.
func SpokenTicker(token string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(token))
}

// DefaultCommands is the portal command set.
func DefaultCommands() []Command {
	return []Command{
		{Pattern: PatternHello, Handler: func(_ context.Context, a Actions, _ []string) {
			a.Alert(HelloAcknowledged)
		}},
		{Pattern: PatternColor, Handler: func(_ context.Context, a Actions, args []string) {
			a.SetBackground(arg(args, 0))
		}},
		{Pattern: PatternNavigate, Handler: func(ctx context.Context, a Actions, args []string) {
			if kind, ok := NavigationTarget(arg(args, 0)); ok {
				a.Navigate(ctx, kind)
			}
		}},
		{Pattern: PatternLookup, Handler: func(ctx context.Context, a Actions, args []string) {
			if ticker := SpokenTicker(arg(args, 0)); ticker != "" {
				a.LookupStock(ctx, ticker)
			}
		}},
		{Pattern: PatternDogBreed, Handler: func(_ context.Context, a Actions, args []string) {
			if label := strings.TrimSpace(arg(args, 0)); label != "" {
				a.SelectBreed(label)
			}
		}},
	}
}

// NewDefaultRouter creates a router with DefaultCommands registered.
func NewDefaultRouter(logger *common.Logger) *Router {
	r := NewRouter(logger)
	if _, err := r.AddCommands(DefaultCommands()...); err != nil {
		// The default patterns are constants.
		panic(err)
	}
	return r
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
