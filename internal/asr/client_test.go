package asr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
)

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"":      "",
		"auto":  "",
		"en-IN": "en",
		"en_GB": "en",
		"DE":    "de",
		"fr":    "fr",
	}
	for in, want := range tests {
		if got := baseLanguage(in); got != want {
			t.Errorf("baseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenAITranscribe(t *testing.T) {
	var gotModel, gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart body: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"  What time is it?  "}`))
	}))
	defer srv.Close()

	client := NewOpenAISDKClient("test-key", "", "en-IN", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))

	samples := make([]float32, 1600)
	text, err := client.Transcribe(context.Background(), samples, 16000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "What time is it?" {
		t.Errorf("Expected trimmed transcript, got %q", text)
	}
	if gotModel != DefaultOpenAIModel {
		t.Errorf("Expected model %s, got %s", DefaultOpenAIModel, gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("Expected language en, got %s", gotLanguage)
	}
}

func TestOpenAITranscribeEmpty(t *testing.T) {
	client := NewOpenAISDKClient("test-key", "", "")
	text, err := client.Transcribe(context.Background(), nil, 16000)
	if err != nil || text != "" {
		t.Errorf("Expected empty transcript without a request, got %q, %v", text, err)
	}
}

func TestOpenAITranscribeLive(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewOpenAISDKClient(apiKey, "", "en")
	text, err := client.Transcribe(ctx, make([]float32, 16000), 16000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	t.Logf("Silence transcribed as %q", text)
}
