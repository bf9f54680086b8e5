// Package intent maps transcripts to actions through an ordered catalog of
// substring-matched phrase categories.
package intent

// Interpreter resolves transcripts against a fixed catalog
type Interpreter struct {
	entries []Entry
}

// NewInterpreter creates an interpreter over the default catalog
func NewInterpreter(opts Options) *Interpreter {
	return &Interpreter{entries: NewCatalog(opts)}
}

// NewInterpreterWithCatalog creates an interpreter over a custom ordered catalog
func NewInterpreterWithCatalog(entries []Entry) *Interpreter {
	return &Interpreter{entries: entries}
}

// Interpret returns the action of the first catalog entry matching the
// transcript, or the fallback speech when nothing matches. The transcript is
// expected lowercase and trimmed. Interpret performs no I/O and does not
// modify s.
func (in *Interpreter) Interpret(transcript string, s Session) Action {
	for _, e := range in.entries {
		if e.Match(transcript) {
			return e.Resolve(transcript, s)
		}
	}
	return speak(IntentFallback, FallbackSpeech)
}

// Entries returns the catalog entry names in match order
func (in *Interpreter) Entries() []string {
	names := make([]string, 0, len(in.entries))
	for _, e := range in.entries {
		names = append(names, e.Name)
	}
	return names
}
