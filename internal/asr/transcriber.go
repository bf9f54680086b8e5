// Package asr turns captured utterances into text
package asr

import "context"

// Transcriber converts mono float32 samples into a transcript. An utterance
// with no recognizable words yields an empty string and a nil error.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error)
}
