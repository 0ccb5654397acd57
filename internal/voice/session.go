package voice

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// Recognizer yields utterances. Next blocks until the next utterance and
// returns its recognition alternatives, most likely first. io.EOF means the
// audio source is exhausted and no session can be restarted.
type Recognizer interface {
	Next(ctx context.Context) ([]string, error)
}

// SessionOptions controls the recognition lifecycle.
type SessionOptions struct {
	// Continuous keeps one recognition session open across utterances.
	// When false a session ends after a single utterance.
	Continuous bool
	// AutoRestart starts a new session whenever one ends, until Stop.
	AutoRestart bool
	// RestartDelay is the pause before restarting after a failed session.
	RestartDelay time.Duration
}

// Session is one Listen call. It may span many recognition sessions when
// auto-restart is on.
type Session struct {
	router  *Router
	rec     Recognizer
	actions Actions
	opts    SessionOptions
	cancel  context.CancelFunc
	done    chan struct{}

	mu         sync.Mutex
	err        error
	utterances int
	restarts   int
}

func newSession(r *Router, rec Recognizer, a Actions, opts SessionOptions, cancel context.CancelFunc) *Session {
	if opts.RestartDelay <= 0 {
		opts.RestartDelay = time.Second
	}
	return &Session{
		router:  r,
		rec:     rec,
		actions: a,
		opts:    opts,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.router.release(s)
	defer s.cancel()

	for {
		err := s.recognize(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, io.EOF):
			return
		case !s.opts.AutoRestart:
			s.setErr(err)
			return
		}

		if err != nil {
			s.router.logger.Warn().Err(err).Dur("delay", s.opts.RestartDelay).Msg("recognition failed, restarting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.opts.RestartDelay):
			}
		}
		s.mu.Lock()
		s.restarts++
		s.mu.Unlock()
	}
}

// recognize runs one recognition session.
func (s *Session) recognize(ctx context.Context) error {
	for {
		alternatives, err := s.rec.Next(ctx)
		if err != nil {
			return err
		}
		if len(alternatives) > 0 {
			s.mu.Lock()
			s.utterances++
			s.mu.Unlock()
			s.router.Dispatch(ctx, s.actions, alternatives...)
		}
		if !s.opts.Continuous {
			return nil
		}
	}
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Stop ends the session. It does not wait; use Done or Wait.
func (s *Session) Stop() { s.cancel() }

// Done is closed once the session has ended.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session ends and returns the error that ended it,
// nil for Stop, cancellation or an exhausted source.
func (s *Session) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Utterances counts the utterances dispatched so far.
func (s *Session) Utterances() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.utterances
}

// Restarts counts how many times recognition was restarted.
func (s *Session) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}
