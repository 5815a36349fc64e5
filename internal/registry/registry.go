// Package registry holds the consumer's namespaces, commands, dynamic macro
// value sets, and special texts. A Registry is owned by one goroutine.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/vocab"
)

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrDuplicateNamespace = errors.New("duplicate namespace")
	ErrDuplicateCommand   = errors.New("duplicate command")
	ErrUnknownNamespace   = errors.New("unknown namespace")
	ErrEmptyValue         = errors.New("empty macro value")
)

// Event is what a handler receives for one accepted match.
type Event struct {
	Namespace  string
	Command    string
	Confidence float64
	Parameters map[string]string
}

// FullID returns namespace/command.
func (e Event) FullID() string {
	return packet.JoinID(e.Namespace, e.Command)
}

// Handler runs the action bound to a command.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Command is one spoken action.
type Command struct {
	ID            string
	Label         string
	Phrases       []string
	Handler       Handler
	ExecuteAlways bool
}

// Namespace groups commands of one feature module.
type Namespace struct {
	ID       string
	Label    string
	commands []*Command
}

// Commands returns the namespace's commands in registration order.
func (n *Namespace) Commands() []*Command {
	return slices.Clone(n.commands)
}

// Entry is a resolved command together with its namespace id.
type Entry struct {
	Namespace string
	Command   *Command
}

// FullID returns namespace/command.
func (e Entry) FullID() string {
	return packet.JoinID(e.Namespace, e.Command.ID)
}

// Registry is the consumer's command set. Every mutation that changes what
// the recognition host must know bumps Version.
type Registry struct {
	namespaces []*Namespace
	macros     *vocab.MacroSets
	texts      vocab.Texts
	version    uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		macros: vocab.NewMacroSets(),
		texts:  vocab.Texts{},
	}
}

// Version increases on every effective mutation.
func (r *Registry) Version() uint64 {
	return r.version
}

func (r *Registry) touch() {
	r.version++
}

func validID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case strings.Contains(id, packet.IDSeparator), strings.Contains(id, packet.Separator):
		return fmt.Errorf("%w: %q contains %q or %q", ErrInvalidID, id, packet.IDSeparator, packet.Separator)
	default:
		return nil
	}
}

// AddNamespace registers a namespace. Ids are unique within the registry.
func (r *Registry) AddNamespace(id, label string) (*Namespace, error) {
	if err := validID(id); err != nil {
		return nil, fmt.Errorf("namespace: %w", err)
	}
	if r.namespace(id) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateNamespace, id)
	}
	ns := &Namespace{ID: id, Label: label}
	r.namespaces = append(r.namespaces, ns)
	r.touch()
	return ns, nil
}

// RemoveNamespace drops a namespace, its commands, and its macro value sets.
func (r *Registry) RemoveNamespace(id string) bool {
	idx := slices.IndexFunc(r.namespaces, func(ns *Namespace) bool { return ns.ID == id })
	if idx < 0 {
		return false
	}
	r.namespaces = slices.Delete(r.namespaces, idx, idx+1)
	r.macros.DeletePrefix(id + packet.IDSeparator)
	r.touch()
	return true
}

// Namespaces returns namespaces in registration order.
func (r *Registry) Namespaces() []*Namespace {
	return slices.Clone(r.namespaces)
}

func (r *Registry) namespace(id string) *Namespace {
	for _, ns := range r.namespaces {
		if ns.ID == id {
			return ns
		}
	}
	return nil
}

// AddCommand appends cmd to namespace nsID. Command ids are unique within a namespace.
func (r *Registry) AddCommand(nsID string, cmd Command) error {
	ns := r.namespace(nsID)
	if ns == nil {
		return fmt.Errorf("%w: %q", ErrUnknownNamespace, nsID)
	}
	if err := validID(cmd.ID); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	for _, existing := range ns.commands {
		if existing.ID == cmd.ID {
			return fmt.Errorf("%w: %q", ErrDuplicateCommand, packet.JoinID(nsID, cmd.ID))
		}
	}
	cmd.Phrases = slices.Clone(cmd.Phrases)
	ns.commands = append(ns.commands, &cmd)
	r.touch()
	return nil
}

// RemoveCommand drops one command.
func (r *Registry) RemoveCommand(nsID, cmdID string) bool {
	ns := r.namespace(nsID)
	if ns == nil {
		return false
	}
	idx := slices.IndexFunc(ns.commands, func(c *Command) bool { return c.ID == cmdID })
	if idx < 0 {
		return false
	}
	ns.commands = slices.Delete(ns.commands, idx, idx+1)
	r.touch()
	return true
}

// Lookup resolves a full command id.
func (r *Registry) Lookup(fullID string) (Entry, bool) {
	nsID, cmdID, ok := packet.SplitID(fullID)
	if !ok {
		return Entry{}, false
	}
	ns := r.namespace(nsID)
	if ns == nil {
		return Entry{}, false
	}
	for _, cmd := range ns.commands {
		if cmd.ID == cmdID {
			return Entry{Namespace: nsID, Command: cmd}, true
		}
	}
	return Entry{}, false
}

// SetMacroValues replaces the value set of nsID/macroID. An unchanged list is
// a no-op and reports false. Blank values are rejected: the host answers with
// a value's position, so a value it cannot register would shift every index
// after it.
func (r *Registry) SetMacroValues(nsID, macroID string, values []string) (bool, error) {
	if err := validID(macroID); err != nil {
		return false, fmt.Errorf("macro: %w", err)
	}
	for i, value := range values {
		if strings.TrimSpace(value) == "" {
			return false, fmt.Errorf("%w: %s value %d", ErrEmptyValue, packet.JoinID(nsID, macroID), i)
		}
	}
	fullID := packet.JoinID(nsID, macroID)
	if current, ok := r.macros.Get(fullID); ok && slices.Equal(current, values) {
		return false, nil
	}
	r.macros.Replace(fullID, values)
	r.touch()
	return true, nil
}

// MacroValues returns the current value set of a full macro id.
func (r *Registry) MacroValues(fullID string) ([]string, bool) {
	values, ok := r.macros.Get(fullID)
	return slices.Clone(values), ok
}

// SetSpecialText overwrites one special text. An empty text clears it.
func (r *Registry) SetSpecialText(slot vocab.Slot, text string) bool {
	if r.texts.Get(slot) == text {
		return false
	}
	r.texts.Set(slot, text)
	r.touch()
	return true
}

// SyncCommand is the host-facing view of one command.
type SyncCommand struct {
	FullID  string
	Phrases []string
}

// Snapshot is a deep copy of everything the recognition host needs.
type Snapshot struct {
	Version  uint64
	Commands []SyncCommand
	Macros   *vocab.MacroSets
	Texts    vocab.Texts
}

// Snapshot copies the current state for a resync.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Version: r.version,
		Macros:  r.macros.Clone(),
		Texts:   r.texts.Clone(),
	}
	for _, ns := range r.namespaces {
		for _, cmd := range ns.commands {
			snap.Commands = append(snap.Commands, SyncCommand{
				FullID:  packet.JoinID(ns.ID, cmd.ID),
				Phrases: slices.Clone(cmd.Phrases),
			})
		}
	}
	return snap
}
