package tts

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Mayank726/jarvis-assistant/internal/speech"
)

// Console writes utterances to a terminal instead of playing them
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Voices(ctx context.Context) ([]speech.Voice, error) {
	return []speech.Voice{{ID: "console", Name: "Console Text"}}, nil
}

func (c *Console) Speak(ctx context.Context, u speech.Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "jarvis> %s\n", u.Text)
	return err
}

var _ speech.Synthesizer = (*Console)(nil)
