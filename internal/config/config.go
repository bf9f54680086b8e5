// Package config loads the assistant configuration from YAML with
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mayank726/jarvis-assistant/internal/capture"
	"github.com/Mayank726/jarvis-assistant/internal/intent"
	"github.com/Mayank726/jarvis-assistant/internal/speech"
	"github.com/Mayank726/jarvis-assistant/internal/state"
	"github.com/Mayank726/jarvis-assistant/internal/store"
)

// Capture and speech backend names
const (
	BackendOpenAI  = "openai"
	BackendWhisper = "whisper"
	BackendConsole = "console"
)

type Config struct {
	Assistant AssistantConfig `yaml:"assistant"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Capture   CaptureConfig   `yaml:"capture"`
	Speech    SpeechConfig    `yaml:"speech"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Store     StoreConfig     `yaml:"store"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type AssistantConfig struct {
	Name         string `yaml:"name"`
	FallbackNoun string `yaml:"fallback_noun"`
	Creator      string `yaml:"creator"`
	TimeLayout   string `yaml:"time_layout"`
	DateLayout   string `yaml:"date_layout"`
}

type LifecycleConfig struct {
	RestartDelay time.Duration `yaml:"restart_delay"`
	AutoStart    bool          `yaml:"auto_start"`
}

type CaptureConfig struct {
	Backend         string        `yaml:"backend"`
	Model           string        `yaml:"model"`
	ModelPath       string        `yaml:"model_path"`
	Language        string        `yaml:"language"`
	Threshold       float64       `yaml:"threshold"`
	Silence         time.Duration `yaml:"silence"`
	MaxUtterance    time.Duration `yaml:"max_utterance"`
	NoSpeechTimeout time.Duration `yaml:"no_speech_timeout"`
}

type SpeechConfig struct {
	Backend    string `yaml:"backend"`
	Model      string `yaml:"model"`
	SampleRate int    `yaml:"sample_rate"`
	// Voice holds the parameters applied to every utterance
	Voice speech.Config `yaml:"voice"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	// Addr is the Prometheus listen address; empty disables the endpoint
	Addr string `yaml:"addr"`
}

func Default() *Config {
	opts := intent.DefaultOptions()
	endpoint := capture.DefaultEndpointConfig()
	return &Config{
		Assistant: AssistantConfig{
			Name:         opts.AssistantName,
			FallbackNoun: opts.FallbackNoun,
			Creator:      opts.Creator,
			TimeLayout:   opts.TimeLayout,
			DateLayout:   opts.DateLayout,
		},
		Lifecycle: LifecycleConfig{
			RestartDelay: state.DefaultRestartDelay,
			AutoStart:    true,
		},
		Capture: CaptureConfig{
			Backend:         BackendOpenAI,
			Language:        "en",
			Threshold:       endpoint.Threshold,
			Silence:         endpoint.Silence,
			MaxUtterance:    endpoint.MaxUtterance,
			NoSpeechTimeout: endpoint.NoSpeechTimeout,
		},
		Speech: SpeechConfig{
			Backend:    BackendOpenAI,
			SampleRate: 24000,
			Voice:      speech.DefaultConfig(),
		},
		Store: StoreConfig{
			Path: store.DefaultPath(),
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults with
// environment overrides applied.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults, rejecting unknown keys
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = store.DefaultPath()
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if name := os.Getenv("JARVIS_ASSISTANT_NAME"); name != "" {
		c.Assistant.Name = name
	}
	if path := os.Getenv("JARVIS_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Assistant.Name == "" {
		errs = append(errs, errors.New("assistant.name must not be empty"))
	}
	if c.Lifecycle.RestartDelay <= 0 {
		errs = append(errs, errors.New("lifecycle.restart_delay must be positive"))
	}

	switch c.Capture.Backend {
	case BackendOpenAI, BackendConsole:
	case BackendWhisper:
		if c.Capture.ModelPath == "" {
			errs = append(errs, errors.New("capture.model_path is required for the whisper backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("capture.backend %q is not one of openai, whisper, console", c.Capture.Backend))
	}
	if c.Capture.Threshold <= 0 || c.Capture.Threshold >= 1 {
		errs = append(errs, errors.New("capture.threshold must be between 0 and 1"))
	}
	if c.Capture.Silence <= 0 || c.Capture.MaxUtterance <= 0 || c.Capture.NoSpeechTimeout <= 0 {
		errs = append(errs, errors.New("capture durations must be positive"))
	}

	switch c.Speech.Backend {
	case BackendOpenAI, BackendConsole:
	default:
		errs = append(errs, fmt.Errorf("speech.backend %q is not one of openai, console", c.Speech.Backend))
	}
	if c.Speech.SampleRate <= 0 {
		errs = append(errs, errors.New("speech.sample_rate must be positive"))
	}
	if c.Speech.Voice.Rate < 0 || c.Speech.Voice.Pitch < 0 {
		errs = append(errs, errors.New("speech.voice rate and pitch must not be negative"))
	}

	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path must not be empty"))
	}

	return errors.Join(errs...)
}

// NeedsOpenAI reports whether any configured backend calls the OpenAI API
func (c *Config) NeedsOpenAI() bool {
	return c.Capture.Backend == BackendOpenAI || c.Speech.Backend == BackendOpenAI
}

// IntentOptions returns the catalog options for the assistant section
func (c *Config) IntentOptions() intent.Options {
	opts := intent.DefaultOptions()
	opts.AssistantName = c.Assistant.Name
	if c.Assistant.FallbackNoun != "" {
		opts.FallbackNoun = c.Assistant.FallbackNoun
	}
	if c.Assistant.Creator != "" {
		opts.Creator = c.Assistant.Creator
	}
	if c.Assistant.TimeLayout != "" {
		opts.TimeLayout = c.Assistant.TimeLayout
	}
	if c.Assistant.DateLayout != "" {
		opts.DateLayout = c.Assistant.DateLayout
	}
	return opts
}

// Endpoint returns the microphone endpointing settings
func (c *Config) Endpoint() capture.EndpointConfig {
	cfg := capture.DefaultEndpointConfig()
	cfg.Threshold = c.Capture.Threshold
	cfg.Silence = c.Capture.Silence
	cfg.MaxUtterance = c.Capture.MaxUtterance
	cfg.NoSpeechTimeout = c.Capture.NoSpeechTimeout
	return cfg
}

// StateConfig returns the lifecycle policy
func (c *Config) StateConfig() *state.Config {
	return &state.Config{
		RestartDelay: c.Lifecycle.RestartDelay,
		AutoStart:    c.Lifecycle.AutoStart,
	}
}
