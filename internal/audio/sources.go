// Package audio discovers Pulse input sources for the recognition host and
// picks the one it should listen on.
package audio

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Source is one Pulse input source.
type Source struct {
	Name        string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Usable reports whether recognition can listen on the source.
func (s Source) Usable() bool {
	return s.Available && !s.Muted
}

func (s Source) String() string {
	mark := " "
	if s.Default {
		mark = "*"
	}
	return fmt.Sprintf("%s %s | %q | state=%s | available=%s | muted=%s",
		mark, s.Name, s.Description, s.State, yesNo(s.Available), yesNo(s.Muted))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Lister enumerates input sources.
type Lister interface {
	Sources(ctx context.Context) ([]Source, error)
}

// PulseLister reads sources from the running Pulse (or PipeWire-pulse) server.
type PulseLister struct{}

// Sources implements Lister.
func (PulseLister) Sources(_ context.Context) ([]Source, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("voicecmd"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	sources := make([]Source, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		sources = append(sources, Source{
			Name:        info.SourceName,
			Description: info.Device,
			State:       stateName(info.State),
			Available:   portAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultSource.ID(),
		})
	}
	return sources, nil
}

func stateName(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// portAvailable checks the active port. Sources without ports are available.
func portAvailable(info *pulseproto.GetSourceInfoReply) bool {
	if info == nil {
		return false
	}
	for _, port := range info.Ports {
		if port.Name == info.ActivePortName {
			// unknown=0, no=1, yes=2
			return port.Available != 1
		}
	}
	return true
}
