// Package voice maps recognized phrases to page actions.
//
// A Router owns its command table. Handlers never reach for globals: every
// effect goes through the Actions collaborator passed to Dispatch or Listen,
// which is how the same command set drives the browser (via a Recorder), the
// MCP tool and the headless CLI tab.
package voice

import (
	"context"
	"errors"
	"sync"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/page"
)

// ErrSessionActive is returned by Listen while another session is running.
var ErrSessionActive = errors.New("voice: a recognition session is already active")

// Actions is everything a command may do to the current page.
type Actions interface {
	Alert(message string)
	SetBackground(color string)
	Navigate(ctx context.Context, to page.Kind)
	LookupStock(ctx context.Context, ticker string)
	SelectBreed(label string)
}

// Handler runs a matched command with its captured arguments in pattern order.
type Handler func(ctx context.Context, a Actions, args []string)

// Command pairs a phrase pattern with its handler.
type Command struct {
	Pattern string
	Handler Handler
}

// Match describes the command a phrase resolved to.
type Match struct {
	Pattern string
	Phrase  string
	Args    []string
}

// ResultFunc observes every dispatched utterance; ok is false when no
// command matched.
type ResultFunc func(m Match, ok bool)

type entry struct {
	id      int
	pattern *pattern
	handler Handler
}

// Router holds the command table and the single active session.
type Router struct {
	logger *common.Logger

	mu        sync.RWMutex
	nextID    int
	entries   []entry
	observers map[int]ResultFunc
	active    *Session
}

// NewRouter creates an empty router.
func NewRouter(logger *common.Logger) *Router {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Router{logger: logger, observers: make(map[int]ResultFunc)}
}

// Add registers handler for pattern and returns its unsubscribe func.
// Earlier registrations win when several patterns match a phrase.
func (r *Router) Add(source string, handler Handler) (unsubscribe func(), err error) {
	if handler == nil {
		return nil, errors.New("voice: nil handler")
	}
	p, err := compilePattern(source)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, entry{id: id, pattern: p, handler: handler})
	r.mu.Unlock()

	return r.remover(id), nil
}

// AddCommands registers cmds in order. On error nothing is registered.
// The returned func removes the whole set.
func (r *Router) AddCommands(cmds ...Command) (unsubscribe func(), err error) {
	compiled := make([]*pattern, len(cmds))
	for i, c := range cmds {
		if c.Handler == nil {
			return nil, errors.New("voice: nil handler for " + c.Pattern)
		}
		if compiled[i], err = compilePattern(c.Pattern); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	removers := make([]func(), len(cmds))
	for i, c := range cmds {
		id := r.nextID
		r.nextID++
		r.entries = append(r.entries, entry{id: id, pattern: compiled[i], handler: c.Handler})
		removers[i] = r.remover(id)
	}
	r.mu.Unlock()

	return func() {
		for _, rm := range removers {
			rm()
		}
	}, nil
}

func (r *Router) remover(id int) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, e := range r.entries {
				if e.id == id {
					r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
					return
				}
			}
		})
	}
}

// Patterns lists the registered patterns in match order.
func (r *Router) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.pattern.source
	}
	return out
}

// Subscribe registers fn to observe dispatch results.
func (r *Router) Subscribe(fn ResultFunc) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.observers, id)
			r.mu.Unlock()
		})
	}
}

// Match resolves alternatives without running a handler. Alternatives are
// tried in order; within one alternative the earliest registered command wins.
// An unmatched result carries only the first alternative as its Phrase.
func (r *Router) Match(alternatives ...string) (Match, bool) {
	_, m, ok := r.lookup(alternatives)
	return m, ok
}

func (r *Router) lookup(alternatives []string) (Handler, Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, phrase := range alternatives {
		for _, e := range r.entries {
			if args, ok := e.pattern.match(phrase); ok {
				return e.handler, Match{Pattern: e.pattern.source, Phrase: phrase, Args: args}, true
			}
		}
	}
	var miss Match
	if len(alternatives) > 0 {
		miss.Phrase = alternatives[0]
	}
	return nil, miss, false
}

// Dispatch runs the first command matching alternatives against a.
// An unmatched utterance is not an error: it is logged at debug and
// reported as ok=false.
func (r *Router) Dispatch(ctx context.Context, a Actions, alternatives ...string) (Match, bool) {
	handler, m, ok := r.lookup(alternatives)
	if ok {
		r.logger.Info().Str("pattern", m.Pattern).Str("phrase", m.Phrase).Msg("voice command matched")
		handler(ctx, a, m.Args)
	} else {
		r.logger.Debug().Int("alternatives", len(alternatives)).Msg("voice phrase not recognised")
	}

	r.mu.RLock()
	observers := make([]ResultFunc, 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.RUnlock()
	for _, fn := range observers {
		fn(m, ok)
	}
	return m, ok
}

// Listen starts the router's single recognition session. It returns
// ErrSessionActive while a previous session is still running.
func (r *Router) Listen(ctx context.Context, rec Recognizer, a Actions, opts SessionOptions) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, ErrSessionActive
	}
	sctx, cancel := context.WithCancel(ctx)
	s := newSession(r, rec, a, opts, cancel)
	r.active = s
	go s.run(sctx)
	return s, nil
}

// Listening reports whether a session is active.
func (r *Router) Listening() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active != nil
}

// Stop ends the active session, if any, and waits for it to finish.
func (r *Router) Stop() {
	r.mu.RLock()
	s := r.active
	r.mu.RUnlock()
	if s != nil {
		s.Stop()
		<-s.Done()
	}
}

func (r *Router) release(s *Session) {
	r.mu.Lock()
	if r.active == s {
		r.active = nil
	}
	r.mu.Unlock()
}
