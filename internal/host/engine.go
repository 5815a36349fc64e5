// Package host owns the recognition engine: it compiles the synchronized
// command set into grammars, installs them, and forwards recognitions.
package host

import (
	"context"
	"errors"

	"github.com/rbright/voicecmd/internal/grammar"
)

// ErrBusy is returned by an Engine that cannot change its grammars right now.
// The adapter retries on it.
var ErrBusy = errors.New("engine busy")

// Binding ties a compiled grammar to the full command id it reports.
type Binding struct {
	CommandID string
	Grammar   grammar.Grammar
}

// Recognition is one engine result.
type Recognition struct {
	CommandID  string
	Text       string
	Confidence float64
	Parameters map[string]string
}

// Engine is the speech recognizer behind the host.
type Engine interface {
	Stop(ctx context.Context) error
	UnloadAll(ctx context.Context) error
	Load(ctx context.Context, bindings []Binding) error
	Start(ctx context.Context) error
	Recognitions() <-chan Recognition
}
