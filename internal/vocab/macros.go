package vocab

import "strings"

// MacroSets maps full macro ids (namespace/macro) to ordered spoken values.
// Ids keep their first-registration order so suffix lookups are deterministic.
type MacroSets struct {
	ids    []string
	values map[string][]string
}

// NewMacroSets returns an empty set collection.
func NewMacroSets() *MacroSets {
	return &MacroSets{values: map[string][]string{}}
}

// Append adds one value to a set, creating the set on first use.
func (m *MacroSets) Append(fullID, text string) {
	if _, ok := m.values[fullID]; !ok {
		m.ids = append(m.ids, fullID)
	}
	m.values[fullID] = append(m.values[fullID], text)
}

// Replace overwrites a set with a copy of values.
func (m *MacroSets) Replace(fullID string, values []string) {
	if _, ok := m.values[fullID]; !ok {
		m.ids = append(m.ids, fullID)
	}
	m.values[fullID] = append([]string(nil), values...)
}

// Delete drops one set.
func (m *MacroSets) Delete(fullID string) {
	if _, ok := m.values[fullID]; !ok {
		return
	}
	delete(m.values, fullID)
	for i, id := range m.ids {
		if id == fullID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
}

// DeletePrefix drops every set whose id starts with prefix.
func (m *MacroSets) DeletePrefix(prefix string) {
	kept := m.ids[:0]
	for _, id := range m.ids {
		if strings.HasPrefix(id, prefix) {
			delete(m.values, id)
			continue
		}
		kept = append(kept, id)
	}
	m.ids = kept
}

// Get returns the values of an exact id.
func (m *MacroSets) Get(fullID string) ([]string, bool) {
	values, ok := m.values[fullID]
	return values, ok
}

// Lookup resolves a macro name: exact id first, then the first registered
// id ending in "/"+name.
func (m *MacroSets) Lookup(name string) ([]string, bool) {
	if values, ok := m.values[name]; ok {
		return values, true
	}
	suffix := "/" + name
	for _, id := range m.ids {
		if strings.HasSuffix(id, suffix) {
			return m.values[id], true
		}
	}
	return nil, false
}

// IDs returns set ids in registration order.
func (m *MacroSets) IDs() []string {
	return append([]string(nil), m.ids...)
}

// Len returns the number of sets.
func (m *MacroSets) Len() int {
	return len(m.ids)
}

// Clone returns a deep copy.
func (m *MacroSets) Clone() *MacroSets {
	out := NewMacroSets()
	for _, id := range m.ids {
		out.Replace(id, m.values[id])
	}
	return out
}
