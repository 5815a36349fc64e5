package bindings

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/registry"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_./-]+?)(:text)?\}`)

// MacroValues resolves a full macro id to its current values.
type MacroValues func(fullID string) ([]string, bool)

// expand substitutes placeholders in every argv element. {command} and
// {confidence} are always available.
func expand(argv []string, ev registry.Event, values MacroValues) ([]string, error) {
	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		var firstErr error
		expanded := placeholder.ReplaceAllStringFunc(arg, func(m string) string {
			parts := placeholder.FindStringSubmatch(m)
			name, asText := parts[1], parts[2] != ""

			value, err := lookup(name, asText, ev, values)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return value
		})
		if firstErr != nil {
			return nil, firstErr
		}
		out = append(out, expanded)
	}
	return out, nil
}

func lookup(name string, asText bool, ev registry.Event, values MacroValues) (string, error) {
	switch name {
	case "command":
		return ev.FullID(), nil
	case "confidence":
		return strconv.FormatFloat(ev.Confidence, 'f', -1, 64), nil
	}

	raw, ok := ev.Parameters[name]
	if !ok {
		return "", fmt.Errorf("no parameter %q in match", name)
	}
	if !asText {
		return raw, nil
	}

	idx, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("parameter %q value %q is not a macro index", name, raw)
	}
	fullID := name
	if _, _, qualified := packet.SplitID(name); !qualified {
		fullID = packet.JoinID(ev.Namespace, name)
	}
	list, ok := values(fullID)
	if !ok || idx < 0 || idx >= len(list) {
		return "", fmt.Errorf("macro %q has no value at index %d", fullID, idx)
	}
	return list[idx], nil
}
