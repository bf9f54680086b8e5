package asr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Mayank726/jarvis-assistant/internal/audio"
)

// DefaultOpenAIModel is the hosted transcription model
const DefaultOpenAIModel = "whisper-1"

// OpenAISDKClient transcribes audio with the OpenAI transcription endpoint
type OpenAISDKClient struct {
	client   openai.Client
	model    string
	language string
}

// NewOpenAISDKClient creates a client. An empty model selects
// DefaultOpenAIModel; language "" or "auto" lets the service detect it.
func NewOpenAISDKClient(apiKey, model, language string, opts ...option.RequestOption) *OpenAISDKClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAISDKClient{
		client:   openai.NewClient(opts...),
		model:    model,
		language: language,
	}
}

func (c *OpenAISDKClient) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	wavData, err := audio.EncodeWAV(samples, sampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to encode audio: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(c.model),
	}
	if lang := baseLanguage(c.language); lang != "" {
		params.Language = openai.String(lang)
	}

	transcription, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return strings.TrimSpace(transcription.Text), nil
}

// baseLanguage reduces a BCP-47 tag such as "en-IN" to the ISO-639-1 code the
// transcription services accept.
func baseLanguage(tag string) string {
	if tag == "" || tag == "auto" {
		return ""
	}
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

var _ Transcriber = (*OpenAISDKClient)(nil)
