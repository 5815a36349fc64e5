package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEveryAnnouncementHasSamples(t *testing.T) {
	for state, a := range announcements {
		require.NotEmpty(t, cueSamples(a.cue), state)
	}
	require.Empty(t, cueSamples(cueKind(99)))
}

func TestWakeAndSleepAreMirrored(t *testing.T) {
	require.Len(t, cueSamples(cueSleep), len(cueSamples(cueWake)))
	require.NotEqual(t, cueSamples(cueWake), cueSamples(cueSleep))
}

func TestSynthesizeToneDuration(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	require.Len(t, got, samplesForDuration(100*time.Millisecond))
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestSamplesForDuration(t *testing.T) {
	require.Equal(t, 0, samplesForDuration(0))
	require.Equal(t, 400, samplesForDuration(25*time.Millisecond))
}
