// Package textengine is a reference recognition engine that treats each
// line of text as an utterance. It backs `serve --engine text`.
package textengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rbright/voicecmd/internal/host"
)

// Engine matches typed utterances against the loaded grammars. It reports
// host.ErrBusy for grammar changes while a line is being recognized.
type Engine struct {
	logger *slog.Logger

	mu       sync.Mutex
	bindings []host.Binding
	running  bool
	busy     bool

	results chan host.Recognition
}

// New returns a stopped engine with no grammars.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger, results: make(chan host.Recognition, 16)}
}

func (e *Engine) Stop(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return nil
}

func (e *Engine) UnloadAll(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return host.ErrBusy
	}
	e.bindings = nil
	return nil
}

func (e *Engine) Load(_ context.Context, bindings []host.Binding) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return host.ErrBusy
	}
	e.bindings = append(e.bindings, bindings...)
	return nil
}

func (e *Engine) Start(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	return nil
}

func (e *Engine) Recognitions() <-chan host.Recognition {
	return e.results
}

// Recognize matches one utterance against the loaded grammars in load order.
func (e *Engine) Recognize(text string) (host.Recognition, bool) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return host.Recognition{}, false
	}
	e.busy = true
	bindings := e.bindings
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()

	input := words(text)
	if len(input) == 0 {
		return host.Recognition{}, false
	}
	for _, b := range bindings {
		params := map[string]string{}
		if matchElements(input, b.Grammar.Elements, params) {
			return host.Recognition{
				CommandID:  b.CommandID,
				Text:       text,
				Confidence: 1.0,
				Parameters: params,
			}, true
		}
	}
	return host.Recognition{}, false
}

// Feed reads utterances line by line until r is exhausted or ctx ends.
func (e *Engine) Feed(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		rec, ok := e.Recognize(line)
		if !ok {
			e.logger.Debug("no grammar matched", "text", line)
			continue
		}
		select {
		case e.results <- rec:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read utterances: %w", err)
	}
	return nil
}
