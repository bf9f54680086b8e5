package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mayank726/jarvis-assistant/internal/capture"
	"github.com/Mayank726/jarvis-assistant/internal/config"
	"github.com/Mayank726/jarvis-assistant/internal/opener"
	"github.com/Mayank726/jarvis-assistant/internal/state"
	"github.com/Mayank726/jarvis-assistant/internal/store"
	"github.com/Mayank726/jarvis-assistant/internal/tts"
)

func newConsoleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Capture.Backend = config.BackendConsole
	cfg.Speech.Backend = config.BackendConsole
	cfg.Lifecycle.RestartDelay = 10 * time.Millisecond
	cfg.Store.Path = filepath.Join(t.TempDir(), "state.yaml")
	return cfg
}

func TestRunAssistantConsole(t *testing.T) {
	cfg := newConsoleConfig(t)
	if err := store.NewOS(cfg.Store.Path).Set(state.NameKey, "Tony"); err != nil {
		t.Fatal(err)
	}

	source := capture.NewLines(strings.NewReader("who are you\nopen youtube\n"), nil)
	var spoken, status bytes.Buffer
	recorder := &opener.Recorder{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := runAssistant(ctx, cfg, source, tts.NewConsole(&spoken), recorder, &status); err != nil {
		t.Fatalf("runAssistant failed: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Expected the assistant to stop at end of input")
	}

	got := status.String()
	if !strings.HasPrefix(got, "Welcome back, Tony\n") {
		t.Errorf("Expected welcome line first, got:\n%s", got)
	}
	for _, want := range []string{"status: Listening", "status: Processing", "status: Speaking", "status: Idle"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in status output:\n%s", want, got)
		}
	}

	if !strings.Contains(spoken.String(), "jarvis> I am Jarvis, your personal assistant created by Mayank.") {
		t.Errorf("Unexpected speech output:\n%s", spoken.String())
	}
	if targets := recorder.Targets; len(targets) != 1 || targets[0] != "https://www.youtube.com" {
		t.Errorf("Unexpected open requests %v", targets)
	}
}

func TestRunAssistantNoWelcomeWithoutName(t *testing.T) {
	cfg := newConsoleConfig(t)
	source := capture.NewLines(strings.NewReader(""), nil)
	var status bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := runAssistant(ctx, cfg, source, tts.NewConsole(&bytes.Buffer{}), &opener.Recorder{}, &status); err != nil {
		t.Fatalf("runAssistant failed: %v", err)
	}
	if strings.Contains(status.String(), "Welcome back") {
		t.Errorf("Unexpected welcome line:\n%s", status.String())
	}
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		snap state.Snapshot
		want string
	}{
		{state.Snapshot{State: state.StateListening}, "status: Listening"},
		{state.Snapshot{State: state.StateError, LastError: errors.New("no speech detected")}, "status: Error (no speech detected)"},
		{state.Snapshot{State: state.StateIdle, LastError: errors.New("stale")}, "status: Idle"},
	}

	for _, tt := range tests {
		if got := statusLine(tt.snap); got != tt.want {
			t.Errorf("statusLine(%v) = %q, want %q", tt.snap.State, got, tt.want)
		}
	}
}
