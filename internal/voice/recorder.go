package voice

import (
	"context"
	"sync"

	"github.com/bobmcallan/vox-portal/internal/page"
)

// Effect types a client applies to its page.
const (
	EffectAlert         = "alert"
	EffectSetBackground = "set_background"
	EffectNavigate      = "navigate"
	EffectLookupStock   = "lookup_stock"
	EffectSelectBreed   = "select_breed"
)

// Effect is one recorded page action.
type Effect struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Path  string `json:"path,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// PageState is what the client reports about its page so commands can
// decide whether they apply.
type PageState struct {
	TickerInput bool     `json:"ticker_input"`
	Breeds      []string `json:"breeds,omitempty"`
}

// Recorder implements Actions by recording effects instead of applying
// them. It is used when the page lives in a browser or an MCP client.
type Recorder struct {
	state PageState

	mu      sync.Mutex
	effects []Effect
}

// NewRecorder creates a recorder for a page in state.
func NewRecorder(state PageState) *Recorder {
	return &Recorder{state: state}
}

func (r *Recorder) add(e Effect) {
	r.mu.Lock()
	r.effects = append(r.effects, e)
	r.mu.Unlock()
}

// Effects returns the recorded effects in order. Never nil.
func (r *Recorder) Effects() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Effect{}, r.effects...)
}

func (r *Recorder) Alert(message string) {
	r.add(Effect{Type: EffectAlert, Value: message})
}

func (r *Recorder) SetBackground(color string) {
	r.add(Effect{Type: EffectSetBackground, Value: color})
}

func (r *Recorder) Navigate(_ context.Context, to page.Kind) {
	r.add(Effect{Type: EffectNavigate, Value: string(to), Path: to.Path()})
}

// LookupStock is recorded only when the page has a ticker field.
func (r *Recorder) LookupStock(_ context.Context, ticker string) {
	if !r.state.TickerInput {
		return
	}
	r.add(Effect{Type: EffectLookupStock, Value: ticker})
}

// SelectBreed records the first button label matching label. No match
// records nothing.
func (r *Recorder) SelectBreed(label string) {
	i := page.MatchLabel(r.state.Breeds, label)
	if i < 0 {
		return
	}
	r.add(Effect{Type: EffectSelectBreed, Value: r.state.Breeds[i], Index: &i})
}
