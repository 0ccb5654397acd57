package common

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// BrowserConfig controls the headless Chrome used by the UI tests.
type BrowserConfig struct {
	Headless bool
	Timeout  time.Duration
}

// Browser is a single Chrome tab pointed at the portal under test. It
// records uncaught exceptions and console errors from the moment it opens.
type Browser struct {
	ctx     context.Context
	cancel  context.CancelFunc
	baseURL string

	mu     sync.Mutex
	errors []string
}

// NewBrowser launches Chrome. Close must be called to release it.
func NewBrowser(baseURL string, cfg BrowserConfig) *Browser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		// The voice tests drive recognition through window.voxDispatch;
		// a fake device keeps Chrome from prompting for the microphone.
		chromedp.Flag("use-fake-ui-for-media-stream", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(tabCtx, cfg.Timeout)

	b := &Browser{
		ctx:     ctx,
		baseURL: strings.TrimRight(baseURL, "/"),
		cancel: func() {
			timeoutCancel()
			tabCancel()
			allocCancel()
		},
	}
	chromedp.ListenTarget(ctx, b.recordError)
	return b
}

// Close shuts the tab and the browser process.
func (b *Browser) Close() { b.cancel() }

// Context is the tab context for raw chromedp actions.
func (b *Browser) Context() context.Context { return b.ctx }

func (b *Browser) recordError(ev interface{}) {
	var msg string
	switch e := ev.(type) {
	case *runtime.EventExceptionThrown:
		msg = e.ExceptionDetails.Text
		if ex := e.ExceptionDetails.Exception; ex != nil && ex.Description != "" {
			msg = ex.Description
		}
	case *runtime.EventConsoleAPICalled:
		if e.Type != runtime.APITypeError {
			return
		}
		var parts []string
		for _, arg := range e.Args {
			switch {
			case arg.Value != nil:
				parts = append(parts, string(arg.Value))
			case arg.Description != "":
				parts = append(parts, arg.Description)
			}
		}
		msg = strings.Join(parts, " ")
	default:
		return
	}
	if msg == "" || ignorableError(msg) {
		return
	}
	b.mu.Lock()
	b.errors = append(b.errors, msg)
	b.mu.Unlock()
}

// ignorableError filters browser noise that says nothing about the portal:
// a missing favicon, and speech recognition being unavailable headless.
func ignorableError(msg string) bool {
	for _, s := range []string{"favicon", "SpeechRecognition", "not-allowed"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// JSErrors returns the errors recorded so far.
func (b *Browser) JSErrors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.errors...)
}

// Open loads path and waits for the page scripts to settle.
func (b *Browser) Open(path string) error {
	return chromedp.Run(b.ctx,
		chromedp.Navigate(b.baseURL+path),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(800*time.Millisecond),
	)
}

// Location returns the tab's current URL.
func (b *Browser) Location() (string, error) {
	var loc string
	err := chromedp.Run(b.ctx, chromedp.Location(&loc))
	return loc, err
}

// Eval runs a JavaScript expression and decodes its result into out.
func (b *Browser) Eval(expr string, out interface{}) error {
	return chromedp.Run(b.ctx, chromedp.Evaluate(expr, out))
}

// query evaluates fn(el) against the first element matching selector.
// fn receives null when nothing matches.
func (b *Browser) query(selector, fn string, out interface{}) error {
	sel, _ := json.Marshal(selector)
	return b.Eval(fmt.Sprintf(`((el) => (%s)(el))(document.querySelector(%s))`, fn, sel), out)
}

// Visible reports whether selector matches an element that is not display:none.
func (b *Browser) Visible(selector string) (bool, error) {
	var v bool
	err := b.query(selector, `el => !!el && getComputedStyle(el).display !== 'none'`, &v)
	return v, err
}

// Text returns the trimmed text of the first match, "" when absent.
func (b *Browser) Text(selector string) (string, error) {
	var s string
	err := b.query(selector, `el => el ? el.textContent.trim() : ''`, &s)
	return s, err
}

// Count returns how many elements match selector.
func (b *Browser) Count(selector string) (int, error) {
	sel, _ := json.Marshal(selector)
	var n int
	err := b.Eval(fmt.Sprintf(`document.querySelectorAll(%s).length`, sel), &n)
	return n, err
}

// Click clicks the first match and waits briefly for handlers to run.
func (b *Browser) Click(selector string) error {
	return chromedp.Run(b.ctx,
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.Sleep(300*time.Millisecond),
	)
}

// WaitFor blocks until selector is visible or the tab times out.
func (b *Browser) WaitFor(selector string) error {
	return chromedp.Run(b.ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Speak feeds recognition alternatives to the page as if the microphone
// had produced them, then waits for the effects to apply.
func (b *Browser) Speak(phrases ...string) error {
	list, _ := json.Marshal(phrases)
	var done bool
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(
		fmt.Sprintf(`window.voxDispatch(%s).then(() => true)`, list), &done,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) },
	)); err != nil {
		return fmt.Errorf("dispatch %v: %w", phrases, err)
	}
	return chromedp.Run(b.ctx, chromedp.Sleep(300*time.Millisecond))
}

// Screenshot writes a full-page PNG to path.
func (b *Browser) Screenshot(path string) error {
	var buf []byte
	if err := chromedp.Run(b.ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
