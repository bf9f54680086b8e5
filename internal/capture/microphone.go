package capture

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Mayank726/jarvis-assistant/internal/asr"
	"github.com/Mayank726/jarvis-assistant/internal/audio"
)

// Stream is a started-on-demand source of mono audio frames
type Stream interface {
	Start() error
	Read() ([]float32, error)
	Close() error
}

// EndpointConfig controls when an utterance is considered finished
type EndpointConfig struct {
	SampleRate int
	// Threshold is the RMS level above which a frame counts as speech
	Threshold float64
	// Silence is the trailing quiet period that ends an utterance
	Silence time.Duration
	// MaxUtterance caps the length of captured speech
	MaxUtterance time.Duration
	// NoSpeechTimeout ends a session in which nobody spoke
	NoSpeechTimeout time.Duration
}

func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		SampleRate:      audio.SampleRate,
		Threshold:       0.02,
		Silence:         800 * time.Millisecond,
		MaxUtterance:    15 * time.Second,
		NoSpeechTimeout: 8 * time.Second,
	}
}

// segmenter accumulates frames and decides when an utterance has ended
type segmenter struct {
	cfg      EndpointConfig
	speech   []float32
	heard    bool
	silent   time.Duration
	elapsed  time.Duration
	captured time.Duration
}

func newSegmenter(cfg EndpointConfig) *segmenter {
	return &segmenter{cfg: cfg}
}

// push adds one frame and reports whether the session is complete
func (s *segmenter) push(frame []float32) bool {
	d := time.Duration(len(frame)) * time.Second / time.Duration(s.cfg.SampleRate)
	s.elapsed += d
	loud := rms(frame) >= s.cfg.Threshold

	if !s.heard {
		if !loud {
			return s.elapsed >= s.cfg.NoSpeechTimeout
		}
		s.heard = true
	}

	s.speech = append(s.speech, frame...)
	s.captured += d
	if loud {
		s.silent = 0
	} else {
		s.silent += d
	}

	return s.silent >= s.cfg.Silence || s.captured >= s.cfg.MaxUtterance
}

func (s *segmenter) utterance() []float32 {
	if !s.heard {
		return nil
	}
	return s.speech
}

func rms(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// Microphone captures one spoken utterance per session from the default input
// device and transcribes it.
type Microphone struct {
	cfg         EndpointConfig
	transcriber asr.Transcriber
	open        func() (Stream, error)
	check       func() error

	mu     sync.Mutex
	active bool
}

func NewMicrophone(cfg EndpointConfig, transcriber asr.Transcriber) *Microphone {
	return &Microphone{
		cfg:         cfg,
		transcriber: transcriber,
		open: func() (Stream, error) {
			in, err := audio.NewInput()
			if err != nil {
				return nil, err
			}
			return in, nil
		},
		check: audio.InputAvailable,
	}
}

func (m *Microphone) Available() error {
	if m.transcriber == nil {
		return fmt.Errorf("no transcriber configured")
	}
	return m.check()
}

func (m *Microphone) Start(ctx context.Context, h Handler) error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return ErrBusy
	}
	m.active = true
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			m.active = false
			m.mu.Unlock()
			h.OnEnd()
		}()

		text, err := m.capture(ctx, h)
		if err != nil {
			h.OnError(err)
			return
		}
		h.OnResult(text)
	}()
	return nil
}

func (m *Microphone) capture(ctx context.Context, h Handler) (string, error) {
	samples, err := m.record(ctx, h)
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", ErrNoSpeech
	}

	start := time.Now()
	text, err := m.transcriber.Transcribe(ctx, samples, m.cfg.SampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe: %w", err)
	}
	log.Printf("Transcribed %.1fs of audio in %v", float64(len(samples))/float64(m.cfg.SampleRate), time.Since(start))

	text = Normalize(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (m *Microphone) record(ctx context.Context, h Handler) ([]float32, error) {
	stream, err := m.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open microphone: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("failed to start microphone: %w", err)
	}
	h.OnStart()

	seg := newSegmenter(m.cfg)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := stream.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read microphone: %w", err)
		}
		if seg.push(frame) {
			return seg.utterance(), nil
		}
	}
}
