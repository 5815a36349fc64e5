// Package grammar compiles command phrases with <macro> placeholders into
// engine-loadable grammars.
package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateInvalid marks phrases that are not (<literal> | <macro>)+.
var ErrTemplateInvalid = errors.New("invalid command template")

// TokenKind distinguishes literal spans from macro references.
type TokenKind int

const (
	TokenLiteral TokenKind = iota + 1
	TokenMacro
)

func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Token is one element of a parsed phrase.
type Token struct {
	Kind TokenKind
	Text string
}

// Parse splits a phrase into literal and macro tokens. Literal spans are
// trimmed and whitespace-only spans dropped. Angle brackets cannot appear in
// literal text.
func Parse(phrase string) ([]Token, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, fmt.Errorf("%w: empty phrase", ErrTemplateInvalid)
	}

	var (
		tokens  []Token
		current strings.Builder
		inMacro bool
	)

	flushLiteral := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text != "" {
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: text})
		}
	}

	for i, r := range phrase {
		switch {
		case r == '<':
			if inMacro {
				return nil, fmt.Errorf("%w: nested '<' at offset %d in %q", ErrTemplateInvalid, i, phrase)
			}
			flushLiteral()
			inMacro = true
		case r == '>':
			if !inMacro {
				return nil, fmt.Errorf("%w: unbalanced '>' at offset %d in %q", ErrTemplateInvalid, i, phrase)
			}
			name := strings.TrimSpace(current.String())
			current.Reset()
			if name == "" {
				return nil, fmt.Errorf("%w: empty macro name at offset %d in %q", ErrTemplateInvalid, i, phrase)
			}
			tokens = append(tokens, Token{Kind: TokenMacro, Text: name})
			inMacro = false
		default:
			current.WriteRune(r)
		}
	}

	if inMacro {
		return nil, fmt.Errorf("%w: unterminated macro in %q", ErrTemplateInvalid, phrase)
	}
	flushLiteral()

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in %q", ErrTemplateInvalid, phrase)
	}
	return tokens, nil
}

// Macros returns the macro names referenced by tokens, in order.
func Macros(tokens []Token) []string {
	var names []string
	for _, tok := range tokens {
		if tok.Kind == TokenMacro {
			names = append(names, tok.Text)
		}
	}
	return names
}
