package voice

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineRecognizer treats each non-blank input line as one utterance.
// Alternatives within a line are separated by "|", most likely first.
type LineRecognizer struct {
	lines chan string
	stop  chan struct{}
	once  sync.Once
	halt  sync.Once
	src   io.Reader
	err   error
}

// NewLineRecognizer reads utterances from r.
func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{src: r, lines: make(chan string), stop: make(chan struct{})}
}

func (l *LineRecognizer) start() {
	go func() {
		defer close(l.lines)
		sc := bufio.NewScanner(l.src)
		for sc.Scan() {
			select {
			case l.lines <- sc.Text():
			case <-l.stop:
				return
			}
		}
		l.err = sc.Err()
	}()
}

// Next returns the alternatives of the next non-blank line, or io.EOF once
// the input is exhausted.
func (l *LineRecognizer) Next(ctx context.Context) ([]string, error) {
	l.once.Do(l.start)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case line, ok := <-l.lines:
			if !ok {
				if l.err != nil {
					return nil, l.err
				}
				return nil, io.EOF
			}
			if alts := splitAlternatives(line); len(alts) > 0 {
				return alts, nil
			}
		}
	}
}

func splitAlternatives(line string) []string {
	var alts []string
	for _, a := range strings.Split(line, "|") {
		if a = strings.TrimSpace(a); a != "" {
			alts = append(alts, a)
		}
	}
	return alts
}

// Close stops reading. A reader blocked in Read is released only when its
// Read returns.
func (l *LineRecognizer) Close() error {
	l.halt.Do(func() { close(l.stop) })
	return nil
}
