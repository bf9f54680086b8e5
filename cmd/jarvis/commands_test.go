package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInterpretCommand(t *testing.T) {
	t.Setenv("JARVIS_STORE_PATH", filepath.Join(t.TempDir(), "state.yaml"))
	t.Setenv("JARVIS_ASSISTANT_NAME", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"interpret", "Search", "funny", "cats", "on", "YouTube."})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"intent:     search",
		"kind:       open",
		"resource:   https://www.youtube.com/results?search_query=funny%20cats",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}
}

func TestVoicesCommandConsole(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "jarvis.yaml")
	writeFile(t, cfgPath, "capture:\n  backend: console\nspeech:\n  backend: console\n")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"voices", "--config", cfgPath})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "console") {
		t.Errorf("Expected console voice in output:\n%s", out.String())
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
