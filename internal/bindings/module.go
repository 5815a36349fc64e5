package bindings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/voicecmd/internal/registry"
	"github.com/rbright/voicecmd/internal/vocab"
)

// DefaultTimeout bounds one bound command when timeout_ms is unset.
const DefaultTimeout = 5 * time.Second

// Module registers the namespaces of one bindings file. Bound commands run in
// the background; Wait blocks until every started command has exited.
type Module struct {
	file    File
	runner  Runner
	logger  *slog.Logger
	running sync.WaitGroup
}

// NewModule constructs a module; runner defaults to ExecRunner.
func NewModule(file File, runner Runner, logger *slog.Logger) *Module {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Module{file: file, runner: runner, logger: logger}
}

// Register adds every namespace, command, macro value set, and special text.
// A failure rolls back the namespaces added so far.
func (m *Module) Register(r *registry.Registry) error {
	var added []string
	rollback := func() {
		for _, id := range added {
			r.RemoveNamespace(id)
		}
	}

	for _, ns := range m.file.Namespaces {
		if _, err := r.AddNamespace(ns.ID, ns.Label); err != nil {
			rollback()
			return err
		}
		added = append(added, ns.ID)

		for _, spec := range ns.Commands {
			cmd := registry.Command{
				ID:            spec.ID,
				Label:         spec.Label,
				Phrases:       spec.Phrases,
				ExecuteAlways: spec.ExecuteAlways,
			}
			argv, err := parseArgv(spec.Run)
			if err != nil {
				rollback()
				return fmt.Errorf("%s/%s: %w", ns.ID, spec.ID, err)
			}
			cmd.Handler = m.handler(argv, timeoutFor(spec), r.MacroValues)
			if err := r.AddCommand(ns.ID, cmd); err != nil {
				rollback()
				return err
			}
		}

		for _, macro := range ns.Macros {
			if _, err := r.SetMacroValues(ns.ID, macro.ID, macro.Values); err != nil {
				rollback()
				return fmt.Errorf("%s/%s: %w", ns.ID, macro.ID, err)
			}
		}
	}

	for _, slot := range vocab.Slots {
		if text, ok := m.file.Texts[string(slot)]; ok {
			r.SetSpecialText(slot, text)
		}
	}

	m.logger.Info("bindings registered", "namespaces", len(m.file.Namespaces))
	return nil
}

// Unregister removes the module's namespaces and clears its special texts.
func (m *Module) Unregister(r *registry.Registry) {
	for _, ns := range m.file.Namespaces {
		r.RemoveNamespace(ns.ID)
	}
	for key := range m.file.Texts {
		r.SetSpecialText(vocab.Slot(key), "")
	}
}

func timeoutFor(spec CommandSpec) time.Duration {
	if spec.TimeoutMS > 0 {
		return time.Duration(spec.TimeoutMS) * time.Millisecond
	}
	return DefaultTimeout
}

func (m *Module) handler(argv []string, timeout time.Duration, values MacroValues) registry.Handler {
	return registry.HandlerFunc(func(ctx context.Context, ev registry.Event) error {
		if len(argv) == 0 {
			m.logger.Info("command has no run line", "command", ev.FullID())
			return nil
		}
		expanded, err := expand(argv, ev, values)
		if err != nil {
			return err
		}

		// An in-flight command outlives shutdown up to its own timeout.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		m.running.Add(1)
		go func() {
			defer m.running.Done()
			defer cancel()
			started := time.Now()
			if err := m.runner.Run(runCtx, expanded); err != nil {
				m.logger.Warn("bound command failed",
					"command", ev.FullID(),
					"argv0", expanded[0],
					"elapsed_ms", time.Since(started).Milliseconds(),
					"error", err.Error(),
				)
				return
			}
			m.logger.Debug("bound command finished", "command", ev.FullID(), "elapsed_ms", time.Since(started).Milliseconds())
		}()
		return nil
	})
}

// Wait blocks until every command started by the module's handlers has
// exited.
func (m *Module) Wait() {
	m.running.Wait()
}
