package state

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Mayank726/jarvis-assistant/internal/capture"
	"github.com/Mayank726/jarvis-assistant/internal/intent"
	"github.com/Mayank726/jarvis-assistant/internal/observe"
)

// NameKey is the store key holding the user's display name
const NameKey = "userName"

// DefaultRestartDelay is the pause before listening resumes after speech,
// an error or a speechless action
const DefaultRestartDelay = 1500 * time.Millisecond

const eventQueueSize = 64

// ErrCapabilityUnavailable is returned by Run when the capture engine is missing
var ErrCapabilityUnavailable = errors.New("speech capture unavailable")

// Speaker plays one utterance at a time and calls done when playback ends
type Speaker interface {
	Speak(ctx context.Context, text string, done func(error)) error
}

// Opener dispatches a URL or URI to the platform
type Opener interface {
	Open(ctx context.Context, target string) error
}

// NameStore persists the display name
type NameStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Config holds the lifecycle policy
type Config struct {
	RestartDelay time.Duration
	// AutoStart issues a start request as soon as Run begins
	AutoStart bool
}

// DefaultConfig returns the always-on policy
func DefaultConfig() *Config {
	return &Config{
		RestartDelay: DefaultRestartDelay,
		AutoStart:    true,
	}
}

// Dependencies are the collaborators driven by the Manager
type Dependencies struct {
	Capture     capture.Source
	Speaker     Speaker
	Opener      Opener
	Store       NameStore
	Interpreter *intent.Interpreter
	Metrics     *observe.Metrics
	// OnStateChange is called from the event loop after every transition
	OnStateChange func(from, to State)
}

// Snapshot is a copy of the controller state
type Snapshot struct {
	State     State
	Session   intent.Session
	LastError error
}

// Manager is the listening lifecycle controller. All transitions happen on the
// goroutine running Run, one queued event at a time.
type Manager struct {
	config *Config
	deps   Dependencies

	events  chan event
	done    chan struct{}
	running atomic.Bool

	// guarded by mu for Snapshot readers; written only by the event loop
	mu           sync.Mutex
	currentState State
	session      intent.Session
	lastErr      error

	// event loop only
	captureID     string
	captureCancel context.CancelFunc
	captureStart  time.Time
	restartTimer  *time.Timer
}

// NewManager creates a controller and loads the stored display name
func NewManager(config *Config, deps Dependencies) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RestartDelay <= 0 {
		config.RestartDelay = DefaultRestartDelay
	}
	if deps.Capture == nil {
		return nil, fmt.Errorf("capture source is required")
	}
	if deps.Speaker == nil {
		return nil, fmt.Errorf("speaker is required")
	}
	if deps.Opener == nil {
		return nil, fmt.Errorf("opener is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("name store is required")
	}
	if deps.Interpreter == nil {
		deps.Interpreter = intent.NewInterpreter(intent.DefaultOptions())
	}
	if deps.Metrics == nil {
		deps.Metrics = observe.DefaultMetrics()
	}

	m := &Manager{
		config:       config,
		deps:         deps,
		events:       make(chan event, eventQueueSize),
		done:         make(chan struct{}),
		currentState: StateIdle,
	}

	name, ok, err := deps.Store.Get(NameKey)
	if err != nil {
		log.Printf("Failed to load display name: %v", err)
	} else if ok {
		m.session.DisplayName = name
	}

	return m, nil
}

// Run checks the capture capability and processes events until ctx is
// cancelled. A missing capability leaves the Manager in StateUnavailable and
// returns ErrCapabilityUnavailable; it is never retried.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return fmt.Errorf("manager is already running")
	}
	defer close(m.done)

	if err := m.deps.Capture.Available(); err != nil {
		m.setState(ctx, StateUnavailable)
		log.Printf("Speech capture unavailable: %v", err)
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}

	log.Println("Starting voice assistant...")
	if m.config.AutoStart {
		m.handleStart(ctx, startAuto)
	}

	for {
		select {
		case <-ctx.Done():
			m.stopRestart()
			m.releaseCapture()
			return nil
		case ev := <-m.events:
			m.handle(ctx, ev)
		}
	}
}

// Start requests a capture session on behalf of the user
func (m *Manager) Start() {
	m.post(event{kind: eventStart, reason: startUser})
}

// Foreground signals that the hosting surface became visible again
func (m *Manager) Foreground() {
	m.post(event{kind: eventStart, reason: startForeground})
}

// GetState returns the current phase
func (m *Manager) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentState
}

// Snapshot returns a copy of the phase, session and last capture error
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:     m.currentState,
		Session:   m.session,
		LastError: m.lastErr,
	}
}

func (m *Manager) post(ev event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func (m *Manager) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case eventStart:
		m.handleStart(ctx, ev.reason)
	case eventCaptureStarted:
		if ev.session == m.captureID {
			log.Println("Listening...")
		}
	case eventResult:
		m.handleResult(ctx, ev)
	case eventCaptureError:
		m.handleCaptureError(ctx, ev)
	case eventCaptureEnd:
		m.handleCaptureEnd(ctx, ev)
	case eventSpeechDone:
		m.handleSpeechDone(ctx, ev)
	}
}

func (m *Manager) handleStart(ctx context.Context, reason startReason) {
	switch m.GetState() {
	case StateListening:
		log.Printf("Start request (%s) ignored: already listening", reason)
		return
	case StateProcessing, StateSpeaking:
		log.Printf("Start request (%s) ignored: busy, listening resumes afterwards", reason)
		return
	case StateUnavailable:
		return
	}

	m.stopRestart()
	m.releaseCapture()

	id := uuid.NewString()
	captureCtx, cancel := context.WithCancel(ctx)
	m.captureID = id
	m.captureCancel = cancel
	m.captureStart = time.Now()

	m.mu.Lock()
	m.session.LastTranscript = ""
	m.mu.Unlock()
	m.setState(ctx, StateListening)

	if err := m.deps.Capture.Start(captureCtx, &sessionHandler{m: m, id: id}); err != nil {
		m.handleCaptureError(ctx, event{kind: eventCaptureError, session: id, err: err})
	}
}

func (m *Manager) handleResult(ctx context.Context, ev event) {
	if ev.session != m.captureID || m.GetState() != StateListening {
		return
	}
	m.recordCaptureDuration(ctx)
	m.setState(ctx, StateProcessing)

	m.mu.Lock()
	m.session.LastTranscript = ev.text
	session := m.session
	m.mu.Unlock()

	action := m.deps.Interpreter.Interpret(ev.text, session)
	m.deps.Metrics.RecordIntent(ctx, action.Intent)
	log.Printf("Transcript %q -> %s", ev.text, action)

	m.apply(ctx, action)
}

// apply performs the side effects of an action. Speech is submitted before a
// resource is dispatched.
func (m *Manager) apply(ctx context.Context, action intent.Action) {
	if action.Kind == intent.KindSetName {
		m.mu.Lock()
		m.session.DisplayName = action.Name
		m.mu.Unlock()
		if err := m.deps.Store.Set(NameKey, action.Name); err != nil {
			log.Printf("Failed to persist display name: %v", err)
		}
	}

	speaking := false
	if action.HasSpeech() {
		speaking = m.speak(ctx, action.Speech)
	}

	if action.Kind == intent.KindOpen {
		if err := m.deps.Opener.Open(ctx, action.Resource); err != nil {
			log.Printf("Failed to open %s: %v", action.Resource, err)
		}
	}

	if !speaking {
		m.finish(ctx)
	}
}

func (m *Manager) speak(ctx context.Context, text string) bool {
	m.setState(ctx, StateSpeaking)
	err := m.deps.Speaker.Speak(ctx, text, func(err error) {
		m.post(event{kind: eventSpeechDone, err: err})
	})
	if err != nil {
		log.Printf("Speech request rejected: %v", err)
		m.deps.Metrics.RecordUtterance(ctx, "rejected")
		return false
	}
	return true
}

func (m *Manager) handleSpeechDone(ctx context.Context, ev event) {
	if m.GetState() != StateSpeaking {
		return
	}
	if ev.err != nil && !errors.Is(ev.err, context.Canceled) {
		log.Printf("Speech playback failed: %v", ev.err)
		m.deps.Metrics.RecordUtterance(ctx, "failed")
	} else {
		m.deps.Metrics.RecordUtterance(ctx, "ok")
	}
	m.finish(ctx)
}

func (m *Manager) handleCaptureError(ctx context.Context, ev event) {
	if ev.session != m.captureID || m.GetState() != StateListening {
		return
	}
	m.recordCaptureDuration(ctx)

	m.mu.Lock()
	m.lastErr = ev.err
	m.mu.Unlock()

	log.Printf("Capture error: %v", ev.err)
	m.deps.Metrics.RecordCaptureError(ctx)
	m.setState(ctx, StateError)
	m.scheduleRestart()
}

func (m *Manager) handleCaptureEnd(ctx context.Context, ev event) {
	if ev.session != m.captureID {
		return
	}
	m.releaseCapture()

	switch m.GetState() {
	case StateListening:
		// ended without a result or an error
		m.recordCaptureDuration(ctx)
		m.finish(ctx)
	case StateError:
		m.setState(ctx, StateIdle)
	}
}

// finish returns to Idle and schedules the next capture session
func (m *Manager) finish(ctx context.Context) {
	m.setState(ctx, StateIdle)
	m.scheduleRestart()
}

func (m *Manager) scheduleRestart() {
	m.stopRestart()
	m.restartTimer = time.AfterFunc(m.config.RestartDelay, func() {
		m.post(event{kind: eventStart, reason: startRestart})
	})
}

func (m *Manager) stopRestart() {
	if m.restartTimer != nil {
		m.restartTimer.Stop()
		m.restartTimer = nil
	}
}

func (m *Manager) releaseCapture() {
	if m.captureCancel != nil {
		m.captureCancel()
		m.captureCancel = nil
	}
}

func (m *Manager) recordCaptureDuration(ctx context.Context) {
	if m.captureStart.IsZero() {
		return
	}
	m.deps.Metrics.RecordCaptureDuration(ctx, time.Since(m.captureStart).Seconds())
	m.captureStart = time.Time{}
}

func (m *Manager) setState(ctx context.Context, s State) {
	m.mu.Lock()
	oldState := m.currentState
	m.currentState = s
	m.mu.Unlock()

	if oldState == s {
		return
	}
	log.Printf("State changed: %s -> %s", oldState, s)
	m.deps.Metrics.RecordTransition(ctx, oldState.String(), s.String())
	if m.deps.OnStateChange != nil {
		m.deps.OnStateChange(oldState, s)
	}
}
