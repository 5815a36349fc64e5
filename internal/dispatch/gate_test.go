package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(clock *fakeClock) *Gate {
	g := NewGate()
	g.now = clock.Now
	return g
}

func TestGateListening(t *testing.T) {
	g := newTestGate(&fakeClock{t: time.Unix(100, 0)})
	require.True(t, g.Allows(false))

	require.False(t, g.Toggle())
	require.False(t, g.Allows(false))
	require.True(t, g.Allows(true))
}

func TestGatePauseBlocksAllButExecuteAlways(t *testing.T) {
	g := newTestGate(&fakeClock{t: time.Unix(100, 0)})
	g.Paused = true
	require.False(t, g.Allows(false))
	require.True(t, g.Allows(true))

	g.PushToTalk = true
	g.Press()
	require.False(t, g.Allows(false))
}

func TestGatePushToTalkGrace(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	g := newTestGate(clock)
	g.Listening = false
	g.PushToTalk = true

	require.False(t, g.Allows(false), "never pressed")

	g.Press()
	require.True(t, g.Allows(false))

	g.Release()
	clock.Advance(1400 * time.Millisecond)
	require.True(t, g.Allows(false))

	clock.Advance(100 * time.Millisecond)
	require.True(t, g.Allows(false), "grace is inclusive")

	clock.Advance(100 * time.Millisecond)
	require.False(t, g.Allows(false))
}

func TestGatePushToTalkDisabledIgnoresKey(t *testing.T) {
	g := newTestGate(&fakeClock{t: time.Unix(100, 0)})
	g.Listening = false
	g.Press()
	require.False(t, g.Allows(false))
}
