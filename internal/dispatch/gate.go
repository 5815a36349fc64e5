// Package dispatch turns match packets into handler invocations.
package dispatch

import "time"

const (
	// DefaultMinConfidence is the lowest accepted engine confidence (inclusive).
	DefaultMinConfidence = 0.6
	// DefaultPushToTalkGrace keeps push-to-talk open briefly after release.
	DefaultPushToTalkGrace = 1500 * time.Millisecond
)

// Gate decides whether a recognized command may run right now.
type Gate struct {
	Listening  bool
	Paused     bool
	PushToTalk bool
	Grace      time.Duration

	keyDown    bool
	releasedAt time.Time
	now        func() time.Time
}

// NewGate returns a listening gate with the default grace window.
func NewGate() *Gate {
	return &Gate{Listening: true, Grace: DefaultPushToTalkGrace, now: time.Now}
}

// Press records the push-to-talk key going down.
func (g *Gate) Press() {
	g.keyDown = true
}

// Release records the push-to-talk key going up.
func (g *Gate) Release() {
	if g.keyDown {
		g.releasedAt = g.clock()
	}
	g.keyDown = false
}

// KeyDown reports whether the push-to-talk key is held.
func (g *Gate) KeyDown() bool {
	return g.keyDown
}

// Toggle flips Listening and returns the new value.
func (g *Gate) Toggle() bool {
	g.Listening = !g.Listening
	return g.Listening
}

// Allows reports whether a command may run.
func (g *Gate) Allows(executeAlways bool) bool {
	if executeAlways {
		return true
	}
	if g.Paused {
		return false
	}
	if g.Listening {
		return true
	}
	if !g.PushToTalk {
		return false
	}
	if g.keyDown {
		return true
	}
	if g.releasedAt.IsZero() {
		return false
	}
	return g.clock().Sub(g.releasedAt) <= g.Grace
}

func (g *Gate) clock() time.Time {
	if g.now == nil {
		return time.Now()
	}
	return g.now()
}
