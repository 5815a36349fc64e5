package grammar

import "fmt"

// MacroResolver is the compiler-facing subset of Resolver.
type MacroResolver interface {
	Resolve(name string) (Fragment, error)
}

type parsed struct {
	tokens []Token
	err    error
}

// Compiler turns phrases into grammars. Parsed templates are cached until Reset.
type Compiler struct {
	resolver MacroResolver
	cache    map[string]parsed
}

// NewCompiler constructs a compiler around resolver.
func NewCompiler(resolver MacroResolver) *Compiler {
	return &Compiler{resolver: resolver, cache: map[string]parsed{}}
}

// SetResolver swaps the macro resolver without dropping cached templates.
func (c *Compiler) SetResolver(resolver MacroResolver) {
	c.resolver = resolver
}

// Reset drops cached templates.
func (c *Compiler) Reset() {
	c.cache = map[string]parsed{}
}

// Tokens returns the cached parse of phrase.
func (c *Compiler) Tokens(phrase string) ([]Token, error) {
	if p, ok := c.cache[phrase]; ok {
		return p.tokens, p.err
	}
	tokens, err := Parse(phrase)
	c.cache[phrase] = parsed{tokens: tokens, err: err}
	return tokens, err
}

// Compile parses phrase and resolves every macro. Any failure fails the whole phrase.
func (c *Compiler) Compile(phrase string) (Grammar, error) {
	tokens, err := c.Tokens(phrase)
	if err != nil {
		return Grammar{}, err
	}

	g := Grammar{Phrase: phrase}
	for _, tok := range tokens {
		if tok.Kind == TokenLiteral {
			g.Elements = append(g.Elements, Literal(tok.Text))
			continue
		}
		if c.resolver == nil {
			return Grammar{}, fmt.Errorf("%w: %q (no resolver)", ErrUnknownMacro, tok.Text)
		}
		fragment, err := c.resolver.Resolve(tok.Text)
		if err != nil {
			return Grammar{}, fmt.Errorf("compile %q: %w", phrase, err)
		}
		g.Elements = append(g.Elements, fragment.Elements...)
	}
	return g, nil
}
