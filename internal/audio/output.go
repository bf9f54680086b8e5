package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Playback plays mono clips on the default output device, one at a time
type Playback struct {
	stream *portaudio.Stream
	rate   int

	mu      sync.Mutex
	clip    []float32
	drained chan struct{}
}

func NewPlayback(sampleRate int) (*Playback, error) {
	if err := pa.acquire(); err != nil {
		return nil, err
	}

	p := &Playback{rate: sampleRate}
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), FramesPerBuffer, p.fill)
	if err != nil {
		pa.release()
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	p.stream = stream
	return p, nil
}

// fill is the stream callback. It copies the pending clip into out, pads with
// silence and closes drained once the clip is used up.
func (p *Playback) fill(out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := copy(out, p.clip)
	p.clip = p.clip[n:]
	clear(out[n:])
	if len(p.clip) == 0 && p.drained != nil {
		close(p.drained)
		p.drained = nil
	}
}

// PlayAudioData decodes WAV or MP3 data and plays it at the stream rate
func (p *Playback) PlayAudioData(ctx context.Context, data []byte) error {
	samples, rate, err := NewAudioDecoder().DecodeAudioData(data)
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	log.Printf("Decoded %d samples at %d Hz", len(samples), rate)

	if rate != p.rate {
		samples = Resample(samples, rate, p.rate)
	}
	return p.Play(ctx, samples)
}

// Play blocks until samples have been handed to the device or ctx is
// cancelled. samples must not be modified while playing.
func (p *Playback) Play(ctx context.Context, samples []float32) error {
	if len(samples) == 0 {
		return errors.New("no audio samples to play")
	}

	drained := make(chan struct{})
	p.mu.Lock()
	p.clip = samples
	p.drained = drained
	p.mu.Unlock()

	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	select {
	case <-drained:
	case <-ctx.Done():
		p.mu.Lock()
		p.clip = nil
		p.drained = nil
		p.mu.Unlock()
		p.stream.Stop()
		return ctx.Err()
	}

	// Stop returns once the buffered tail has played
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop audio stream: %w", err)
	}
	return nil
}

func (p *Playback) Close() error {
	if err := p.stream.Close(); err != nil {
		pa.release()
		return fmt.Errorf("failed to close audio stream: %w", err)
	}
	return pa.release()
}
