// Package capture provides speech capture sources. A source runs one capture
// session per Start call and reports it through a Handler: OnStart once input
// is flowing, then exactly one of OnResult or OnError, then OnEnd.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrNoSpeech is reported when a session ends without usable speech
	ErrNoSpeech = errors.New("no speech detected")
	// ErrBusy is returned by Start while a session is still running
	ErrBusy = errors.New("capture session already active")
)

// Handler receives the events of one capture session
type Handler interface {
	OnStart()
	OnResult(text string)
	OnError(err error)
	OnEnd()
}

// Source is a speech capture engine
type Source interface {
	// Available reports whether the engine can be used at all
	Available() error
	// Start begins one capture session and returns without waiting for it
	Start(ctx context.Context, h Handler) error
}

// Normalize lowercases and trims a transcript and drops trailing sentence
// punctuation added by transcription services.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.TrimRight(text, ".!?")
	return strings.TrimSpace(text)
}

// Lines is a text source: every session delivers the next non-empty line of
// its reader as the transcript. End of input is reported as io.EOF errors.
type Lines struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	active  bool
	prompt  func()
	eof     chan struct{}
	eofOnce sync.Once
}

// NewLines creates a line source over r. prompt, if set, is called before
// each line is read.
func NewLines(r io.Reader, prompt func()) *Lines {
	return &Lines{scanner: bufio.NewScanner(r), prompt: prompt, eof: make(chan struct{})}
}

// Done is closed once the reader is exhausted
func (l *Lines) Done() <-chan struct{} {
	return l.eof
}

func (l *Lines) Available() error {
	return nil
}

func (l *Lines) Start(ctx context.Context, h Handler) error {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return ErrBusy
	}
	l.active = true
	l.mu.Unlock()

	go func() {
		defer func() {
			l.mu.Lock()
			l.active = false
			l.mu.Unlock()
			h.OnEnd()
		}()

		h.OnStart()
		text, err := l.next(ctx)
		if err != nil {
			h.OnError(err)
			return
		}
		h.OnResult(text)
	}()
	return nil
}

func (l *Lines) next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if l.prompt != nil {
			l.prompt()
		}
		if !l.scanner.Scan() {
			if err := l.scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read transcript: %w", err)
			}
			l.eofOnce.Do(func() { close(l.eof) })
			return "", io.EOF
		}
		if text := Normalize(l.scanner.Text()); text != "" {
			return text, nil
		}
	}
}
