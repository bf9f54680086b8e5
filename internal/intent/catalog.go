package intent

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Intent names, also used as metric attribute values
const (
	IntentGreeting  = "greeting"
	IntentTime      = "time"
	IntentDate      = "date"
	IntentKnowledge = "knowledge"
	IntentSetName   = "set_name"
	IntentGetName   = "get_name"
	IntentOpen      = "open"
	IntentSearch    = "search"
	IntentFallback  = "fallback"
)

const (
	setNameTrigger  = "my name is"
	getNameTrigger  = "what is my name"
	searchTrigger   = "search"
	searchTarget    = "youtube"
	searchSuffix    = "on youtube"
	searchURLPrefix = "https://www.youtube.com/results?search_query="

	// FallbackSpeech is spoken when no catalog entry matches
	FallbackSpeech = "Sorry, I did not understand that command."
	// UnknownNameSpeech is spoken when the user asks for a name that was never set
	UnknownNameSpeech = "I don't know your name yet. Please tell me by saying my name is..."
)

// Entry is one recognized phrase category
type Entry struct {
	Name    string
	Match   func(transcript string) bool
	Resolve func(transcript string, s Session) Action
}

// KnowledgeItem is a canned question and its answer
type KnowledgeItem struct {
	Question string
	Answer   string
}

// OpenTarget binds an "open ..." phrase to a resource
type OpenTarget struct {
	Trigger      string
	Resource     string
	Confirmation string
}

// Options configures the catalog content
type Options struct {
	// AssistantName is the wake name used by the greeting, lowercase
	AssistantName string
	// FallbackNoun replaces the display name in greetings when it is unset
	FallbackNoun string
	// Creator is credited in the "who are you" answer
	Creator string
	// TimeLayout and DateLayout are Go reference-time layouts
	TimeLayout string
	DateLayout string
	Now        func() time.Time
}

// DefaultOptions returns the stock Jarvis configuration
func DefaultOptions() Options {
	return Options{
		AssistantName: "jarvis",
		FallbackNoun:  "there",
		Creator:       "Mayank",
		TimeLayout:    "3:04:05 pm",
		DateLayout:    "2/1/2006",
		Now:           time.Now,
	}
}

// DefaultKnowledge returns the static question/answer table in match order
func DefaultKnowledge(assistantName, creator string) []KnowledgeItem {
	return []KnowledgeItem{
		{"who are you", fmt.Sprintf("I am %s, your personal assistant created by %s.", titleCase(assistantName), creator)},
		{"how are you", "I am always ready to help you!"},
		{"what is your purpose", "My purpose is to assist you with tasks and respond to your voice commands."},
	}
}

// DefaultOpenTargets returns the navigation table in match order
func DefaultOpenTargets() []OpenTarget {
	return []OpenTarget{
		{"open youtube", "https://www.youtube.com", "Opening YouTube"},
		{"open instagram", "https://www.instagram.com", "Opening Instagram"},
		{"open google", "https://www.google.com", "Opening Google"},
		{"open gallery", "photos://", "Opening Gallery"},
		{"open camera", "camera://", "Opening Camera"},
		{"open phone", "tel://", "Opening Phone dialer"},
		{"open whatsapp", "whatsapp://", "Opening WhatsApp"},
	}
}

// NewCatalog builds the ordered entry list. The order is a behavioral
// contract: the first matching entry wins.
func NewCatalog(opts Options) []Entry {
	opts = withDefaults(opts)
	greeting := "hello " + strings.ToLower(opts.AssistantName)
	knowledge := DefaultKnowledge(opts.AssistantName, opts.Creator)

	entries := []Entry{
		{
			Name:  IntentGreeting,
			Match: contains(greeting),
			Resolve: func(_ string, s Session) Action {
				name := s.DisplayName
				if name == "" {
					name = opts.FallbackNoun
				}
				return speak(IntentGreeting, fmt.Sprintf("Hello %s, how can I help you today?", name))
			},
		},
		{
			Name:  IntentTime,
			Match: contains("time"),
			Resolve: func(string, Session) Action {
				return speak(IntentTime, "The time is "+opts.Now().Format(opts.TimeLayout))
			},
		},
		{
			Name:  IntentDate,
			Match: contains("date"),
			Resolve: func(string, Session) Action {
				return speak(IntentDate, "Today's date is "+opts.Now().Format(opts.DateLayout))
			},
		},
		{
			Name: IntentKnowledge,
			Match: func(t string) bool {
				_, ok := lookupKnowledge(knowledge, t)
				return ok
			},
			Resolve: func(t string, _ Session) Action {
				item, _ := lookupKnowledge(knowledge, t)
				return speak(IntentKnowledge, item.Answer)
			},
		},
		{
			Name:    IntentSetName,
			Match:   contains(setNameTrigger),
			Resolve: resolveSetName,
		},
		{
			Name:  IntentGetName,
			Match: contains(getNameTrigger),
			Resolve: func(_ string, s Session) Action {
				if s.DisplayName == "" {
					return speak(IntentGetName, UnknownNameSpeech)
				}
				return speak(IntentGetName, "Your name is "+s.DisplayName)
			},
		},
	}

	for _, target := range DefaultOpenTargets() {
		target := target
		entries = append(entries, Entry{
			Name:  IntentOpen,
			Match: contains(target.Trigger),
			Resolve: func(string, Session) Action {
				return Action{
					Kind:     KindOpen,
					Intent:   IntentOpen,
					Speech:   target.Confirmation,
					Resource: target.Resource,
				}
			},
		})
	}

	entries = append(entries, Entry{
		Name: IntentSearch,
		Match: func(t string) bool {
			return strings.Contains(t, searchTrigger) && strings.Contains(t, searchTarget)
		},
		Resolve: resolveSearch,
	})

	return entries
}

func resolveSetName(t string, _ Session) Action {
	name := strings.TrimSpace(strings.Replace(t, setNameTrigger, "", 1))
	if name == "" {
		return noop(IntentSetName)
	}
	return Action{
		Kind:   KindSetName,
		Intent: IntentSetName,
		Name:   name,
		Speech: fmt.Sprintf("Nice to meet you, %s!", name),
	}
}

func resolveSearch(t string, _ Session) Action {
	query := strings.Replace(t, searchTrigger, "", 1)
	query = strings.TrimSpace(strings.Replace(query, searchSuffix, "", 1))
	return Action{
		Kind:     KindOpen,
		Intent:   IntentSearch,
		Speech:   fmt.Sprintf("Searching %s on YouTube", query),
		Resource: searchURLPrefix + encodeURIComponent(query),
	}
}

func lookupKnowledge(items []KnowledgeItem, t string) (KnowledgeItem, bool) {
	for _, item := range items {
		if strings.Contains(t, item.Question) {
			return item, true
		}
	}
	return KnowledgeItem{}, false
}

func contains(trigger string) func(string) bool {
	return func(t string) bool {
		return strings.Contains(t, trigger)
	}
}

// encodeURIComponent escapes a query value with %20 for spaces
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.AssistantName == "" {
		opts.AssistantName = def.AssistantName
	}
	if opts.FallbackNoun == "" {
		opts.FallbackNoun = def.FallbackNoun
	}
	if opts.Creator == "" {
		opts.Creator = def.Creator
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = def.TimeLayout
	}
	if opts.DateLayout == "" {
		opts.DateLayout = def.DateLayout
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return opts
}
