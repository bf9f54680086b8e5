package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/openai/openai-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/Mayank726/jarvis-assistant/internal/asr"
	"github.com/Mayank726/jarvis-assistant/internal/audio"
	"github.com/Mayank726/jarvis-assistant/internal/capture"
	"github.com/Mayank726/jarvis-assistant/internal/config"
	"github.com/Mayank726/jarvis-assistant/internal/intent"
	"github.com/Mayank726/jarvis-assistant/internal/observe"
	"github.com/Mayank726/jarvis-assistant/internal/speech"
	"github.com/Mayank726/jarvis-assistant/internal/state"
	"github.com/Mayank726/jarvis-assistant/internal/store"
	"github.com/Mayank726/jarvis-assistant/internal/tts"
)

// runAssistant wires the lifecycle controller to its collaborators and runs
// it, with the metrics endpoint alongside when configured. Status lines go to
// out. A source that can run dry, such as stdin lines, stops the assistant
// once it is exhausted.
func runAssistant(ctx context.Context, cfg *config.Config, source capture.Source, synth speech.Synthesizer, open state.Opener, out io.Writer) error {
	if cfg.Metrics.Addr != "" {
		shutdown, err := observe.InitProvider()
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer shutdown(context.Background())
	}

	var manager *state.Manager
	coordinator := speech.NewCoordinator(synth, cfg.Speech.Voice)
	manager, err := state.NewManager(cfg.StateConfig(), state.Dependencies{
		Capture:     source,
		Speaker:     coordinator,
		Opener:      open,
		Store:       store.NewOS(cfg.Store.Path),
		Interpreter: intent.NewInterpreter(cfg.IntentOptions()),
		Metrics:     observe.DefaultMetrics(),
		OnStateChange: func(from, to state.State) {
			// called from the event loop, after Run has started
			fmt.Fprintln(out, statusLine(manager.Snapshot()))
		},
	})
	if err != nil {
		return err
	}

	if name := manager.Snapshot().Session.DisplayName; name != "" {
		fmt.Fprintf(out, "Welcome back, %s\n", name)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if finite, ok := source.(interface{ Done() <-chan struct{} }); ok {
		go func() {
			select {
			case <-finite.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Run ends only on cancellation or a missing capability
		err := manager.Run(gctx)
		if err != nil {
			return unavailableMessage(err)
		}
		return context.Canceled
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return observe.Serve(gctx, cfg.Metrics.Addr)
		})
	}
	stopSignals := notifySignals(gctx, manager.Foreground, manager.Start)
	defer stopSignals()

	log.Printf("%s is ready", cfg.Assistant.Name)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("Shutting down...")
	return nil
}

// statusLine renders the phase shown to the user, with the capture error
// while in Error
func statusLine(snap state.Snapshot) string {
	if snap.State == state.StateError && snap.LastError != nil {
		return fmt.Sprintf("status: %s (%v)", snap.State, snap.LastError)
	}
	return fmt.Sprintf("status: %s", snap.State)
}

func openAIOptions(cfg *config.Config) ([]option.RequestOption, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for the openai backends")
	}
	var opts []option.RequestOption
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	return opts, nil
}

// buildSource returns the capture source for cfg.Capture.Backend
func buildSource(cfg *config.Config) (capture.Source, func(), error) {
	switch cfg.Capture.Backend {
	case config.BackendConsole:
		return capture.NewLines(os.Stdin, nil), func() {}, nil
	case config.BackendWhisper:
		w, err := asr.NewWhisperNative(cfg.Capture.ModelPath, cfg.Capture.Language)
		if err != nil {
			return nil, nil, err
		}
		return capture.NewMicrophone(cfg.Endpoint(), w), func() { w.Close() }, nil
	default:
		opts, err := openAIOptions(cfg)
		if err != nil {
			return nil, nil, err
		}
		client := asr.NewOpenAISDKClient(cfg.OpenAI.APIKey, cfg.Capture.Model, cfg.Capture.Language, opts...)
		return capture.NewMicrophone(cfg.Endpoint(), client), func() {}, nil
	}
}

// buildSynthesizer returns the synthesizer for cfg.Speech.Backend
func buildSynthesizer(cfg *config.Config) (speech.Synthesizer, func(), error) {
	if cfg.Speech.Backend == config.BackendConsole {
		return tts.NewConsole(os.Stdout), func() {}, nil
	}

	opts, err := openAIOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	output, err := audio.NewPlayback(cfg.Speech.SampleRate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open speaker: %w", err)
	}
	client := tts.NewOpenAISDKClient(cfg.OpenAI.APIKey, cfg.Speech.Model, output, opts...)
	return client, func() { output.Close() }, nil
}
