package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Mayank726/jarvis-assistant/internal/speech"
)

const (
	DefaultModel = "tts-1"
	DefaultVoice = "alloy"
	// maxInputLength is the API limit on input characters
	maxInputLength = 4096
)

// Player plays an encoded audio payload
type Player interface {
	PlayAudioData(ctx context.Context, audioData []byte) error
}

// openAIVoices lists the hosted voices; names carry a gender hint so that
// preferences like "Male" can match them.
var openAIVoices = []speech.Voice{
	{ID: "alloy", Name: "Alloy Neutral"},
	{ID: "echo", Name: "Echo Male"},
	{ID: "fable", Name: "Fable Neutral"},
	{ID: "onyx", Name: "Onyx Male"},
	{ID: "nova", Name: "Nova Female"},
	{ID: "shimmer", Name: "Shimmer Female"},
}

// OpenAISDKClient synthesizes speech with the OpenAI speech endpoint and plays
// the MP3 result through a Player.
type OpenAISDKClient struct {
	client openai.Client
	model  string
	player Player
}

func NewOpenAISDKClient(apiKey, model string, player Player, opts ...option.RequestOption) *OpenAISDKClient {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAISDKClient{
		client: openai.NewClient(opts...),
		model:  model,
		player: player,
	}
}

func (c *OpenAISDKClient) Voices(ctx context.Context) ([]speech.Voice, error) {
	voices := make([]speech.Voice, len(openAIVoices))
	copy(voices, openAIVoices)
	return voices, nil
}

// Synthesize returns the MP3 encoding of an utterance. The service has no
// pitch or language control; Rate maps to speed.
func (c *OpenAISDKClient) Synthesize(ctx context.Context, u speech.Utterance) ([]byte, error) {
	if err := ValidateText(u.Text); err != nil {
		return nil, err
	}

	voice := u.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	params := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(c.model),
		Input:          u.Text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat("mp3"),
	}
	if speed := clampSpeed(u.Rate); speed != 1.0 {
		params.Speed = openai.Float(speed)
	}

	audioResponse, err := c.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer audioResponse.Body.Close()

	audioData, err := io.ReadAll(audioResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	return audioData, nil
}

func (c *OpenAISDKClient) Speak(ctx context.Context, u speech.Utterance) error {
	audioData, err := c.Synthesize(ctx, u)
	if err != nil {
		return err
	}
	if c.player == nil {
		return fmt.Errorf("no audio player configured")
	}
	return c.player.PlayAudioData(ctx, audioData)
}

// ValidateText checks the input against the service limits
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if len(text) > maxInputLength {
		return fmt.Errorf("text too long: %d characters (max %d)", len(text), maxInputLength)
	}
	return nil
}

// clampSpeed maps a rate to the supported 0.25 to 4.0 range; zero means normal
func clampSpeed(rate float64) float64 {
	switch {
	case rate <= 0:
		return 1.0
	case rate < 0.25:
		return 0.25
	case rate > 4.0:
		return 4.0
	default:
		return rate
	}
}

var _ speech.Synthesizer = (*OpenAISDKClient)(nil)
