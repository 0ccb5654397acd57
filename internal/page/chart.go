package page

import (
	"sync"
	"sync/atomic"
)

// Dataset is one chart series.
type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
}

// ChartSpec is the line chart drawn on the canvas, in Chart.js shape.
type ChartSpec struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Chart is the canvas a chart is bound to. Each load takes a token from
// Begin; Render only accepts the most recently issued token, so a slow
// response for an older request never overwrites a newer one.
type Chart struct {
	issued atomic.Uint64

	mu      sync.Mutex
	current *ChartSpec
	renders int
}

// NewChart creates an empty canvas.
func NewChart() *Chart {
	return &Chart{}
}

// Begin issues a new request token.
func (c *Chart) Begin() uint64 {
	return c.issued.Add(1)
}

// Latest reports whether token is still the newest issued.
func (c *Chart) Latest(token uint64) bool {
	return c.issued.Load() == token
}

// Render replaces the bound chart with spec if token is still current.
// It reports whether the chart was replaced.
func (c *Chart) Render(token uint64, spec ChartSpec) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Latest(token) {
		return false
	}
	c.current = &spec
	c.renders++
	return true
}

// Current returns the bound chart, if any.
func (c *Chart) Current() (ChartSpec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ChartSpec{}, false
	}
	return *c.current, true
}

// Renders counts how many times a chart was bound.
func (c *Chart) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}
