package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/registry"
)

// Outcome classifies what happened to one match packet.
type Outcome int

const (
	OutcomeInvoked Outcome = iota + 1
	OutcomeMalformed
	OutcomeLowConfidence
	OutcomeUnknownCommand
	OutcomeGated
	OutcomeHandlerFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvoked:
		return "invoked"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeLowConfidence:
		return "low_confidence"
	case OutcomeUnknownCommand:
		return "unknown_command"
	case OutcomeGated:
		return "gated"
	case OutcomeHandlerFailed:
		return "handler_failed"
	default:
		return "unknown"
	}
}

// Lookup resolves full command ids.
type Lookup interface {
	Lookup(fullID string) (registry.Entry, bool)
}

// Dispatcher gates and invokes handlers for match packets. Handler errors and
// panics are logged and never escape.
type Dispatcher struct {
	commands      Lookup
	gate          *Gate
	logger        *slog.Logger
	MinConfidence float64
}

// NewDispatcher constructs a dispatcher with the default confidence threshold.
func NewDispatcher(commands Lookup, gate *Gate, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if gate == nil {
		gate = NewGate()
	}
	return &Dispatcher{
		commands:      commands,
		gate:          gate,
		logger:        logger,
		MinConfidence: DefaultMinConfidence,
	}
}

// Dispatch handles one match payload.
func (d *Dispatcher) Dispatch(ctx context.Context, data string) Outcome {
	match, err := packet.DecodeMatch(data)
	if err != nil {
		d.logger.Warn("dropping malformed match", "error", err.Error())
		return OutcomeMalformed
	}

	if match.Confidence < d.MinConfidence {
		return OutcomeLowConfidence
	}

	entry, ok := d.commands.Lookup(match.CommandID)
	if !ok {
		d.logger.Warn("unknown command", "command", match.CommandID)
		return OutcomeUnknownCommand
	}

	if !d.gate.Allows(entry.Command.ExecuteAlways) {
		d.logger.Debug("command gated", "command", match.CommandID)
		return OutcomeGated
	}

	ev := registry.Event{
		Namespace:  entry.Namespace,
		Command:    entry.Command.ID,
		Confidence: match.Confidence,
		Parameters: match.Parameters,
	}
	if err := invoke(ctx, entry.Command.Handler, ev); err != nil {
		d.logger.Error("command handler failed", "command", match.CommandID, "error", err.Error())
		return OutcomeHandlerFailed
	}

	d.logger.Info("command executed", "command", match.CommandID, "confidence", match.Confidence)
	return OutcomeInvoked
}

func invoke(ctx context.Context, h registry.Handler, ev registry.Event) (err error) {
	if h == nil {
		return errors.New("no handler bound")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}
