// Package syncer pushes full command-set resyncs from the consumer and
// applies them on the recognition host.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rbright/voicecmd/internal/fsm"
	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/registry"
	"github.com/rbright/voicecmd/internal/vocab"
)

// Link delivers packets to the recognition host.
type Link interface {
	Send(ctx context.Context, p packet.Packet) error
}

// BatchStats summarizes one resync.
type BatchStats struct {
	ID          string
	Version     uint64
	Commands    int
	MacroValues int
	Texts       int
}

// Sender walks the sync phases for every snapshot it is given.
type Sender struct {
	link   Link
	logger *slog.Logger

	mu    sync.RWMutex
	state fsm.State

	newID func() string
}

// NewSender constructs a sender over link.
func NewSender(link Link, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sender{
		link:   link,
		logger: logger,
		state:  fsm.StateIdle,
		newID:  uuid.NewString,
	}
}

// State returns the current phase.
func (s *Sender) State() fsm.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Sender) transition(event fsm.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fsm.Transition(s.state, event)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Sync sends snap as one full batch: clear, commands, macro values, special
// texts, end-of-batch. A failed send leaves the sender reset to idle and the
// host with a partial working copy that is not installed.
func (s *Sender) Sync(ctx context.Context, snap registry.Snapshot) (BatchStats, error) {
	stats := BatchStats{ID: s.newID(), Version: snap.Version}
	logger := s.logger.With("batch", stats.ID)

	if err := s.transition(fsm.EventStart); err != nil {
		return stats, err
	}

	if err := s.run(ctx, snap, &stats); err != nil {
		_ = s.transition(fsm.EventFail)
		_ = s.transition(fsm.EventReset)
		logger.Error("resync failed", "state_version", snap.Version, "error", err.Error())
		return stats, err
	}

	logger.Info("resync sent",
		"state_version", snap.Version,
		"commands", stats.Commands,
		"macro_values", stats.MacroValues,
		"texts", stats.Texts,
	)
	return stats, nil
}

func (s *Sender) run(ctx context.Context, snap registry.Snapshot, stats *BatchStats) error {
	if err := s.send(ctx, packet.New(packet.TypeClear, "")); err != nil {
		return err
	}
	if err := s.transition(fsm.EventCleared); err != nil {
		return err
	}

	for _, cmd := range snap.Commands {
		for _, phrase := range cmd.Phrases {
			if err := s.send(ctx, packet.New(packet.TypeAddCommand, packet.EncodeEntry(cmd.FullID, phrase))); err != nil {
				return err
			}
			stats.Commands++
		}
	}
	if err := s.transition(fsm.EventCommandsSent); err != nil {
		return err
	}

	if snap.Macros != nil {
		for _, id := range snap.Macros.IDs() {
			values, _ := snap.Macros.Get(id)
			for _, value := range values {
				if err := s.send(ctx, packet.New(packet.TypeAddMacroValue, packet.EncodeEntry(id, value))); err != nil {
					return err
				}
				stats.MacroValues++
			}
		}
	}
	if err := s.transition(fsm.EventMacroValuesSent); err != nil {
		return err
	}

	for _, slot := range vocab.Slots {
		text := snap.Texts.Get(slot)
		if text == "" {
			continue
		}
		if err := s.send(ctx, packet.New(slotTypes[slot], text)); err != nil {
			return err
		}
		stats.Texts++
	}
	if err := s.transition(fsm.EventTextsSent); err != nil {
		return err
	}

	if err := s.send(ctx, packet.New(packet.TypeEndOfBatch, "")); err != nil {
		return err
	}
	return s.transition(fsm.EventFinish)
}

func (s *Sender) send(ctx context.Context, p packet.Packet) error {
	if err := s.link.Send(ctx, p); err != nil {
		return fmt.Errorf("send %s: %w", p.Type, err)
	}
	return nil
}
