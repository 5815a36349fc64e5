package grammar

import "strings"

// Choice is one recognizable alternative and the semantic value reported when it matches.
type Choice struct {
	Text  string
	Value string
}

// ElementKind distinguishes fixed words from named captures.
type ElementKind int

const (
	ElementLiteral ElementKind = iota + 1
	ElementCapture
)

// Element is one step of a compiled grammar: either literal text or a
// capture that matches one of its choices and reports it under Key.
type Element struct {
	Kind    ElementKind
	Text    string
	Key     string
	Choices []Choice
}

// Literal builds a literal element.
func Literal(text string) Element {
	return Element{Kind: ElementLiteral, Text: text}
}

// Capture builds a named capture element.
func Capture(key string, choices []Choice) Element {
	return Element{Kind: ElementCapture, Key: key, Choices: choices}
}

// Fragment is the compiled form of one macro.
type Fragment struct {
	Elements []Element
}

// Grammar is the compiled, engine-loadable form of one phrase.
type Grammar struct {
	Phrase   string
	Elements []Element
}

// Keys returns the capture keys of g in order.
func (g Grammar) Keys() []string {
	var keys []string
	for _, el := range g.Elements {
		if el.Kind == ElementCapture {
			keys = append(keys, el.Key)
		}
	}
	return keys
}

// String renders a compact description for logs and the compile command.
func (g Grammar) String() string {
	parts := make([]string, 0, len(g.Elements))
	for _, el := range g.Elements {
		switch el.Kind {
		case ElementLiteral:
			parts = append(parts, "\""+el.Text+"\"")
		case ElementCapture:
			parts = append(parts, "{"+el.Key+":"+choiceSummary(el.Choices)+"}")
		}
	}
	return strings.Join(parts, " ")
}

func choiceSummary(choices []Choice) string {
	const shown = 3
	var b strings.Builder
	for i, c := range choices {
		if i == shown {
			b.WriteString(",...")
			break
		}
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(c.Text + "=" + c.Value)
	}
	return b.String()
}
