package textengine

import (
	"strings"

	"github.com/rbright/voicecmd/internal/grammar"
)

func words(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// matchElements reports whether input is exactly covered by elements,
// filling params with the value of every capture on success.
func matchElements(input []string, elements []grammar.Element, params map[string]string) bool {
	if len(elements) == 0 {
		return len(input) == 0
	}

	el := elements[0]
	switch el.Kind {
	case grammar.ElementLiteral:
		rest, ok := consume(input, words(el.Text))
		if !ok {
			return false
		}
		return matchElements(rest, elements[1:], params)
	case grammar.ElementCapture:
		for _, choice := range el.Choices {
			rest, ok := consume(input, words(choice.Text))
			if !ok {
				continue
			}
			if matchElements(rest, elements[1:], params) {
				params[el.Key] = choice.Value
				return true
			}
		}
	}
	return false
}

func consume(input, want []string) ([]string, bool) {
	if len(want) == 0 || len(want) > len(input) {
		return nil, false
	}
	for i, w := range want {
		if input[i] != w {
			return nil, false
		}
	}
	return input[len(want):], true
}
