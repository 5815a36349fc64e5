package host

import (
	"github.com/rbright/voicecmd/internal/registry"
	"github.com/rbright/voicecmd/internal/vocab"
)

// Phrase is one command phrase as received from the consumer.
type Phrase struct {
	CommandID string
	Text      string
}

// WorkingSet is the host's view of the consumer's command set.
type WorkingSet struct {
	Phrases []Phrase
	Macros  *vocab.MacroSets
	Texts   vocab.Texts
}

// NewWorkingSet returns an empty working set.
func NewWorkingSet() WorkingSet {
	return WorkingSet{Macros: vocab.NewMacroSets(), Texts: vocab.Texts{}}
}

// Clone returns a deep copy.
func (w WorkingSet) Clone() WorkingSet {
	out := WorkingSet{
		Phrases: append([]Phrase(nil), w.Phrases...),
		Macros:  vocab.NewMacroSets(),
		Texts:   vocab.Texts{},
	}
	if w.Macros != nil {
		out.Macros = w.Macros.Clone()
	}
	if w.Texts != nil {
		out.Texts = w.Texts.Clone()
	}
	return out
}

// FromSnapshot builds the working set a host would hold after receiving snap.
func FromSnapshot(snap registry.Snapshot) WorkingSet {
	ws := NewWorkingSet()
	for _, cmd := range snap.Commands {
		for _, text := range cmd.Phrases {
			ws.Phrases = append(ws.Phrases, Phrase{CommandID: cmd.FullID, Text: text})
		}
	}
	if snap.Macros != nil {
		ws.Macros = snap.Macros.Clone()
	}
	if snap.Texts != nil {
		ws.Texts = snap.Texts.Clone()
	}
	return ws
}
