package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/voicecmd/internal/packet"
)

// PacketSender delivers packets to the consumer.
type PacketSender interface {
	Send(ctx context.Context, p packet.Packet) error
}

// PacketApplier consumes sync packets from the consumer.
type PacketApplier interface {
	Apply(ctx context.Context, p packet.Packet) error
}

// Server is the recognition host main loop. Sync packets and engine results
// are handled on one goroutine so installs never overlap.
type Server struct {
	Adapter *Adapter
	Engine  Engine
	Applier PacketApplier
	Out     PacketSender
	Logger  *slog.Logger
	Console io.Writer
}

// Run installs the empty set (self-test only), then serves until ctx ends or
// packets closes.
func (s *Server) Run(ctx context.Context, packets <-chan packet.Packet) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	console := s.Console
	if console == nil {
		console = io.Discard
	}

	if _, err := s.Adapter.Install(ctx, NewWorkingSet()); err != nil {
		return fmt.Errorf("initial grammar install: %w", err)
	}
	fmt.Fprintf(console, "Listening. Say %q to test.\n", SelfTestPhrase)

	recognitions := s.Engine.Recognitions()
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-packets:
			if !ok {
				return nil
			}
			if err := s.Applier.Apply(ctx, p); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("apply packet failed", "type", p.Type.String(), "error", err.Error())
			}
		case rec, ok := <-recognitions:
			if !ok {
				return errors.New("engine recognition stream closed")
			}
			s.forward(ctx, logger, console, rec)
		}
	}
}

func (s *Server) forward(ctx context.Context, logger *slog.Logger, console io.Writer, rec Recognition) {
	logger.Debug("recognized", "command", rec.CommandID, "text", rec.Text, "confidence", rec.Confidence)

	if rec.CommandID == SelfTestCommandID {
		logger.Info("self test successful")
		fmt.Fprintln(console, "Test successful.")
		return
	}

	match := packet.Match{
		CommandID:  rec.CommandID,
		Confidence: rec.Confidence,
		Parameters: rec.Parameters,
	}
	if err := s.Out.Send(ctx, packet.MatchPacket(match)); err != nil {
		logger.Warn("send match failed", "command", rec.CommandID, "error", err.Error())
	}
}
