package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/Mayank726/jarvis-assistant/internal/speech"
)

type fakePlayer struct {
	played []byte
}

func (p *fakePlayer) PlayAudioData(ctx context.Context, audioData []byte) error {
	p.played = audioData
	return nil
}

func TestValidateText(t *testing.T) {
	if err := ValidateText(""); err == nil {
		t.Error("Expected error for empty text")
	}
	if err := ValidateText(strings.Repeat("a", 5000)); err == nil {
		t.Error("Expected error for text too long")
	}
	if err := ValidateText("Hello world"); err != nil {
		t.Errorf("Expected no error for valid text, got %v", err)
	}
}

func TestClampSpeed(t *testing.T) {
	tests := map[float64]float64{0: 1, 0.1: 0.25, 1: 1, 1.5: 1.5, 9: 4}
	for in, want := range tests {
		if got := clampSpeed(in); got != want {
			t.Errorf("clampSpeed(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestVoicesMatchPreferences(t *testing.T) {
	client := NewOpenAISDKClient("test-key", "", nil)
	voices, err := client.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices failed: %v", err)
	}
	if got := speech.SelectVoice(voices, speech.DefaultConfig().PreferredVoices); got != "echo" {
		t.Errorf("Expected first male voice echo, got %q", got)
	}
}

func TestOpenAISpeak(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake"))
	}))
	defer srv.Close()

	player := &fakePlayer{}
	client := NewOpenAISDKClient("test-key", "", player, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	err := client.Speak(context.Background(), speech.Utterance{Text: "Hello Ada", Rate: 1, Pitch: 1, Voice: "onyx"})
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	if body["input"] != "Hello Ada" || body["voice"] != "onyx" || body["model"] != DefaultModel {
		t.Errorf("Unexpected request body %v", body)
	}
	if _, ok := body["speed"]; ok {
		t.Errorf("Speed should be omitted at normal rate, got %v", body["speed"])
	}
	if !bytes.Equal(player.played, []byte("ID3fake")) {
		t.Errorf("Expected synthesized audio to be played, got %q", player.played)
	}
}

func TestConsoleSpeak(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	if err := c.Speak(context.Background(), speech.Utterance{Text: "Hi"}); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if buf.String() != "jarvis> Hi\n" {
		t.Errorf("Unexpected console output %q", buf.String())
	}
}

func TestOpenAISynthesizeLive(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping live synthesis")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewOpenAISDKClient(apiKey, "", nil)
	data, err := client.Synthesize(ctx, speech.Utterance{Text: "Hello", Rate: 1})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected audio data")
	}
}
