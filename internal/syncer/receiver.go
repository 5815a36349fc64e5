package syncer

import (
	"context"
	"fmt"

	"github.com/rbright/voicecmd/internal/host"
	"github.com/rbright/voicecmd/internal/packet"
)

// Installer is the receiver-facing subset of host.Adapter.
type Installer interface {
	Install(ctx context.Context, ws host.WorkingSet) (host.Report, error)
	ResetTemplates()
}

// Receiver applies sync packets to a working copy and installs a deep copy
// of it at every end-of-batch.
type Receiver struct {
	installer Installer
	working   host.WorkingSet
}

// NewReceiver constructs a receiver with an empty working copy.
func NewReceiver(installer Installer) *Receiver {
	return &Receiver{installer: installer, working: host.NewWorkingSet()}
}

// Working returns a copy of the current working set.
func (r *Receiver) Working() host.WorkingSet {
	return r.working.Clone()
}

// Apply handles one packet. Match packets are not for the host and are ignored.
func (r *Receiver) Apply(ctx context.Context, p packet.Packet) error {
	switch p.Type {
	case packet.TypeClear:
		r.working = host.NewWorkingSet()
		r.installer.ResetTemplates()
	case packet.TypeAddCommand:
		fullID, text, err := packet.DecodeEntry(p.Data)
		if err != nil {
			return fmt.Errorf("add command: %w", err)
		}
		r.working.Phrases = append(r.working.Phrases, host.Phrase{CommandID: fullID, Text: text})
	case packet.TypeAddMacroValue:
		fullID, text, err := packet.DecodeEntry(p.Data)
		if err != nil {
			return fmt.Errorf("add macro value: %w", err)
		}
		r.working.Macros.Append(fullID, text)
	case packet.TypeEndOfBatch:
		if _, err := r.installer.Install(ctx, r.working.Clone()); err != nil {
			return fmt.Errorf("install batch: %w", err)
		}
	case packet.TypeMatch:
	default:
		slot, ok := typeSlots[p.Type]
		if !ok {
			return fmt.Errorf("%w: unexpected type %d", packet.ErrMalformed, int(p.Type))
		}
		r.working.Texts.Set(slot, p.Data)
	}
	return nil
}
