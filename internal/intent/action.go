package intent

import "fmt"

// Kind identifies the side effect an Action asks the controller to perform
type Kind int

const (
	KindNoop Kind = iota
	KindSpeak
	KindOpen
	KindSetName
)

func (k Kind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindSpeak:
		return "speak"
	case KindOpen:
		return "open"
	case KindSetName:
		return "set_name"
	default:
		return "unknown"
	}
}

// Action describes what to do in response to a transcript. It is a plain
// value; the interpreter never performs the effect itself.
type Action struct {
	Kind Kind
	// Intent is the name of the catalog entry that produced the action
	Intent string
	// Speech is spoken for speak, open and set_name actions
	Speech string
	// Resource is the URL or URI scheme dispatched for open actions
	Resource string
	// Name is the display name stored for set_name actions
	Name string
}

// HasSpeech reports whether the action produces an utterance
func (a Action) HasSpeech() bool {
	return a.Kind != KindNoop && a.Speech != ""
}

func (a Action) String() string {
	switch a.Kind {
	case KindOpen:
		return fmt.Sprintf("%s[%s] speak=%q resource=%q", a.Kind, a.Intent, a.Speech, a.Resource)
	case KindSetName:
		return fmt.Sprintf("%s[%s] name=%q speak=%q", a.Kind, a.Intent, a.Name, a.Speech)
	case KindSpeak:
		return fmt.Sprintf("%s[%s] %q", a.Kind, a.Intent, a.Speech)
	default:
		return fmt.Sprintf("%s[%s]", a.Kind, a.Intent)
	}
}

// Session is the part of the assistant state the interpreter reads
type Session struct {
	// DisplayName is empty until the user sets it
	DisplayName    string
	LastTranscript string
}

func speak(intent, text string) Action {
	return Action{Kind: KindSpeak, Intent: intent, Speech: text}
}

func noop(intent string) Action {
	return Action{Kind: KindNoop, Intent: intent}
}
