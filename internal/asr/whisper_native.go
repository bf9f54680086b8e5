//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/Mayank726/jarvis-assistant/internal/audio"
)

// whisperSampleRate is the only rate whisper.cpp accepts
const whisperSampleRate = 16000

// WhisperNative transcribes locally with whisper.cpp. The model is loaded once
// and each call creates its own context.
type WhisperNative struct {
	model    whisperlib.Model
	language string
}

func NewWhisperNative(modelPath, language string) (*WhisperNative, error) {
	if modelPath == "" {
		return nil, errors.New("whisper model path must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model %q: %w", modelPath, err)
	}
	return &WhisperNative{model: model, language: baseLanguage(language)}, nil
}

func (w *WhisperNative) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sampleRate != whisperSampleRate {
		samples = audio.Resample(samples, sampleRate, whisperSampleRate)
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}
	if w.language != "" {
		if err := wctx.SetLanguage(w.language); err != nil {
			log.Printf("Whisper rejected language %q, using default: %v", w.language, err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("failed to process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), nil
}

func (w *WhisperNative) Close() error {
	if w.model != nil {
		return w.model.Close()
	}
	return nil
}

var _ Transcriber = (*WhisperNative)(nil)
