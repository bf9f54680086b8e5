//go:build !whisper

package asr

import (
	"context"
	"errors"
)

// ErrWhisperUnsupported is returned when the binary was built without the
// whisper build tag
var ErrWhisperUnsupported = errors.New("whisper backend not compiled in, rebuild with -tags whisper")

type WhisperNative struct{}

func NewWhisperNative(modelPath, language string) (*WhisperNative, error) {
	return nil, ErrWhisperUnsupported
}

func (w *WhisperNative) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	return "", ErrWhisperUnsupported
}

func (w *WhisperNative) Close() error {
	return nil
}
