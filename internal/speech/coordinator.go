// Package speech serializes outgoing utterances. One utterance plays at a
// time; a request made while another is outstanding is rejected.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ErrBusy is returned when an utterance is already playing
var ErrBusy = errors.New("speech output busy")

// Utterance is a synthesized speech request
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64
	Pitch float64
	// Voice is a Voice.ID; empty selects the synthesizer default
	Voice string
}

type Voice struct {
	ID   string
	Name string
}

// Synthesizer speaks one utterance and returns when playback finishes
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, u Utterance) error
}

// Config holds the fixed voice parameters applied to every utterance
type Config struct {
	Lang  string  `yaml:"lang"`
	Rate  float64 `yaml:"rate"`
	Pitch float64 `yaml:"pitch"`
	// PreferredVoices are name substrings tried in order
	PreferredVoices []string `yaml:"preferred_voices"`
}

func DefaultConfig() Config {
	return Config{
		Lang:            "en-IN",
		Rate:            1,
		Pitch:           1,
		PreferredVoices: []string{"Male", "Google UK English Male"},
	}
}

// SelectVoice returns the ID of the first voice whose name contains one of the
// preferences, checked in preference order, or "" when none matches.
func SelectVoice(voices []Voice, preferred []string) string {
	for _, pref := range preferred {
		if pref == "" {
			continue
		}
		for _, v := range voices {
			if strings.Contains(v.Name, pref) {
				return v.ID
			}
		}
	}
	return ""
}

// Coordinator submits utterances to a Synthesizer with fixed parameters
type Coordinator struct {
	synth  Synthesizer
	config Config

	mu       sync.Mutex
	speaking bool
	voice    string
	resolved bool
}

func NewCoordinator(synth Synthesizer, config Config) *Coordinator {
	return &Coordinator{synth: synth, config: config}
}

// Utterance builds the request for text with the configured parameters
func (c *Coordinator) Utterance(ctx context.Context, text string) Utterance {
	return Utterance{
		Text:  text,
		Lang:  c.config.Lang,
		Rate:  c.config.Rate,
		Pitch: c.config.Pitch,
		Voice: c.resolveVoice(ctx),
	}
}

// resolveVoice picks the preferred voice once. A failed lookup falls back to
// the default voice and is retried on the next utterance.
func (c *Coordinator) resolveVoice(ctx context.Context) string {
	c.mu.Lock()
	if c.resolved {
		defer c.mu.Unlock()
		return c.voice
	}
	c.mu.Unlock()

	voices, err := c.synth.Voices(ctx)
	if err != nil {
		log.Printf("Failed to list voices: %v", err)
		return ""
	}
	voice := SelectVoice(voices, c.config.PreferredVoices)
	if voice == "" {
		log.Printf("No preferred voice available, using default")
	}

	c.mu.Lock()
	c.voice = voice
	c.resolved = true
	c.mu.Unlock()
	return voice
}

// Speak starts playing text and returns immediately. done is called with the
// playback result once the synthesizer returns. ErrBusy is returned without
// calling done if an utterance is already outstanding.
func (c *Coordinator) Speak(ctx context.Context, text string, done func(error)) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty utterance")
	}

	c.mu.Lock()
	if c.speaking {
		c.mu.Unlock()
		return ErrBusy
	}
	c.speaking = true
	c.mu.Unlock()

	go func() {
		u := c.Utterance(ctx, text)
		err := c.synth.Speak(ctx, u)

		c.mu.Lock()
		c.speaking = false
		c.mu.Unlock()

		if done != nil {
			done(err)
		}
	}()
	return nil
}

// SpeakAndWait plays text and blocks until playback ends
func (c *Coordinator) SpeakAndWait(ctx context.Context, text string) error {
	result := make(chan error, 1)
	if err := c.Speak(ctx, text, func(err error) { result <- err }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
