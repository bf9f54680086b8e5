package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mayank726/jarvis-assistant/internal/capture"
	"github.com/Mayank726/jarvis-assistant/internal/config"
	"github.com/Mayank726/jarvis-assistant/internal/intent"
	"github.com/Mayank726/jarvis-assistant/internal/opener"
	"github.com/Mayank726/jarvis-assistant/internal/speech"
	"github.com/Mayank726/jarvis-assistant/internal/state"
	"github.com/Mayank726/jarvis-assistant/internal/store"
	"github.com/Mayank726/jarvis-assistant/internal/tts"
)

var dryRun bool

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen on the microphone and answer by voice",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		source, closeSource, err := buildSource(cfg)
		if err != nil {
			return err
		}
		defer closeSource()

		synth, closeSynth, err := buildSynthesizer(cfg)
		if err != nil {
			return err
		}
		defer closeSynth()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runAssistant(ctx, cfg, source, synth, buildOpener(), cmd.OutOrStdout())
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Type commands on stdin and read the answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		source := capture.NewLines(os.Stdin, func() { fmt.Print("you> ") })
		synth := tts.NewConsole(os.Stdout)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runAssistant(ctx, cfg, source, synth, buildOpener(), cmd.OutOrStdout())
	},
}

var interpretCmd = &cobra.Command{
	Use:   "interpret <transcript>",
	Short: "Print the action a transcript resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		var session intent.Session
		if name, ok, err := store.NewOS(cfg.Store.Path).Get(state.NameKey); err == nil && ok {
			session.DisplayName = name
		}

		transcript := capture.Normalize(strings.Join(args, " "))
		action := intent.NewInterpreter(cfg.IntentOptions()).Interpret(transcript, session)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "transcript: %s\n", transcript)
		fmt.Fprintf(out, "intent:     %s\n", action.Intent)
		fmt.Fprintf(out, "kind:       %s\n", action.Kind)
		if action.Speech != "" {
			fmt.Fprintf(out, "speech:     %s\n", action.Speech)
		}
		if action.Resource != "" {
			fmt.Fprintf(out, "resource:   %s\n", action.Resource)
		}
		if action.Name != "" {
			fmt.Fprintf(out, "name:       %s\n", action.Name)
		}
		return nil
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Speak text through the configured synthesizer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		synth, closeSynth, err := buildSynthesizer(cfg)
		if err != nil {
			return err
		}
		defer closeSynth()

		coordinator := speech.NewCoordinator(synth, cfg.Speech.Voice)
		return coordinator.SpeakAndWait(cmd.Context(), strings.Join(args, " "))
	},
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List synthesizer voices and the one that would be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		synth, closeSynth, err := buildSynthesizer(cfg)
		if err != nil {
			return err
		}
		defer closeSynth()

		voices, err := synth.Voices(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list voices: %w", err)
		}

		selected := speech.SelectVoice(voices, cfg.Speech.Voice.PreferredVoices)
		out := cmd.OutOrStdout()
		for _, v := range voices {
			marker := " "
			if v.ID == selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-10s %s\n", marker, v.ID, v.Name)
		}
		if selected == "" {
			fmt.Fprintln(out, "no preferred voice matched, the default voice is used")
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{listenCmd, consoleCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "log open requests instead of launching them")
	}
}

func buildOpener() state.Opener {
	if dryRun {
		return &opener.Recorder{}
	}
	return opener.NewSystem()
}

func unavailableMessage(err error) error {
	if errors.Is(err, state.ErrCapabilityUnavailable) {
		return fmt.Errorf("speech recognition is not supported here: %w", err)
	}
	return err
}
