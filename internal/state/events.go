package state

// State is a phase of the listening lifecycle
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateSpeaking
	StateError
	// StateUnavailable is terminal: the capture engine does not exist
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateListening:
		return "Listening"
	case StateProcessing:
		return "Processing"
	case StateSpeaking:
		return "Speaking"
	case StateError:
		return "Error"
	case StateUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

type eventKind int

const (
	eventStart eventKind = iota
	eventCaptureStarted
	eventResult
	eventCaptureError
	eventCaptureEnd
	eventSpeechDone
)

type startReason string

const (
	startAuto       startReason = "auto"
	startUser       startReason = "user"
	startForeground startReason = "foreground"
	startRestart    startReason = "restart"
)

type event struct {
	kind    eventKind
	reason  startReason
	session string
	text    string
	err     error
}

// sessionHandler forwards the callbacks of one capture session into the
// event queue, tagged with its session ID so stale events can be dropped.
type sessionHandler struct {
	m  *Manager
	id string
}

func (h *sessionHandler) OnStart() {
	h.m.post(event{kind: eventCaptureStarted, session: h.id})
}

func (h *sessionHandler) OnResult(text string) {
	h.m.post(event{kind: eventResult, session: h.id, text: text})
}

func (h *sessionHandler) OnError(err error) {
	h.m.post(event{kind: eventCaptureError, session: h.id, err: err})
}

func (h *sessionHandler) OnEnd() {
	h.m.post(event{kind: eventCaptureEnd, session: h.id})
}
