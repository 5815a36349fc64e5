package session

import "fmt"

// Status is a point-in-time view of the consumer loop.
type Status struct {
	Listening     bool
	Paused        bool
	PushToTalk    bool
	KeyDown       bool
	Version       uint64
	SyncedVersion uint64
	Dispatched    int
}

// State summarizes the gate as one word.
func (s Status) State() string {
	switch {
	case s.Paused:
		return "paused"
	case s.Listening:
		return "listening"
	case s.PushToTalk && s.KeyDown:
		return "talking"
	case s.PushToTalk:
		return "push-to-talk"
	default:
		return "sleeping"
	}
}

func (s Status) String() string {
	return fmt.Sprintf(
		"listening=%t paused=%t push_to_talk=%t key_down=%t version=%d synced=%d dispatched=%d",
		s.Listening, s.Paused, s.PushToTalk, s.KeyDown, s.Version, s.SyncedVersion, s.Dispatched,
	)
}
