package grammar

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rbright/voicecmd/internal/vocab"
)

var (
	// ErrMacroUnresolved is the parent of every macro resolution failure.
	ErrMacroUnresolved = errors.New("macro unresolved")
	// ErrUnknownMacro marks names no category recognizes.
	ErrUnknownMacro = fmt.Errorf("%w: unknown macro", ErrMacroUnresolved)
	// ErrGroupIncomplete marks fixed vocabularies whose member texts are not all set.
	ErrGroupIncomplete = fmt.Errorf("%w: macro group incomplete", ErrMacroUnresolved)
)

const (
	MacroPlusMinus    = "plusMinus"
	MacroDecimalSpeed = "decimalSpeed"

	KeyDecimalSpeedInteger  = "decimalSpeedInteger"
	KeyDecimalSpeedFraction = "decimalSpeedFraction"
)

type numberRange struct {
	min, max int
}

var numberRanges = map[string]numberRange{
	"degreesNumber":     {0, 359},
	"actionGroupNumber": {1, 10},
	"percentNumber":     {0, 100},
	"speedNumber":       {0, 10},
	"decimalDigit":      {0, 9},
}

var numberChoices = buildNumberChoices()

var plusMinusChoices = []Choice{{Text: "+", Value: "+"}, {Text: "-", Value: "-"}}

func buildNumberChoices() map[string][]Choice {
	out := make(map[string][]Choice, len(numberRanges))
	for name, r := range numberRanges {
		choices := make([]Choice, 0, r.max-r.min+1)
		for i := r.min; i <= r.max; i++ {
			s := strconv.Itoa(i)
			choices = append(choices, Choice{Text: s, Value: s})
		}
		out[name] = choices
	}
	return out
}

// Resolver maps macro names to grammar fragments.
type Resolver struct {
	texts     vocab.Texts
	macros    *vocab.MacroSets
	separator string
}

// NewResolver builds a resolver over the current special texts and dynamic
// macro value sets. separator is the spoken word between the integer and
// fractional parts of decimalSpeed.
func NewResolver(texts vocab.Texts, macros *vocab.MacroSets, separator string) *Resolver {
	if texts == nil {
		texts = vocab.Texts{}
	}
	if macros == nil {
		macros = vocab.NewMacroSets()
	}
	if separator == "" {
		separator = defaultSeparator
	}
	return &Resolver{texts: texts, macros: macros, separator: separator}
}

// Resolve returns the fragment for one macro name. Categories are checked in
// order: numeric ranges, plus/minus, fixed vocabularies, the decimal speed
// composite, dynamic value sets.
func (r *Resolver) Resolve(name string) (Fragment, error) {
	if choices, ok := numberChoices[name]; ok {
		return Fragment{Elements: []Element{Capture(name, choices)}}, nil
	}

	if name == MacroPlusMinus {
		return Fragment{Elements: []Element{Capture(name, plusMinusChoices)}}, nil
	}

	if group, ok := vocab.Groups[name]; ok {
		if !r.texts.Complete(group) {
			return Fragment{}, fmt.Errorf("%w: %q", ErrGroupIncomplete, name)
		}
		choices := make([]Choice, 0, len(group.Members))
		for _, m := range group.Members {
			choices = append(choices, Choice{Text: r.texts.Get(m.Slot), Value: m.Value})
		}
		return Fragment{Elements: []Element{Capture(name, choices)}}, nil
	}

	if name == MacroDecimalSpeed {
		return Fragment{Elements: []Element{
			Capture(KeyDecimalSpeedInteger, numberChoices["speedNumber"]),
			Literal(r.separator),
			Capture(KeyDecimalSpeedFraction, numberChoices["decimalDigit"]),
		}}, nil
	}

	if values, ok := r.macros.Lookup(name); ok && len(values) > 0 {
		choices := make([]Choice, 0, len(values))
		for i, text := range values {
			choices = append(choices, Choice{Text: text, Value: strconv.Itoa(i)})
		}
		return Fragment{Elements: []Element{Capture(name, choices)}}, nil
	}

	return Fragment{}, fmt.Errorf("%w: %q", ErrUnknownMacro, name)
}
