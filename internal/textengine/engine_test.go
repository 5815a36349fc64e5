package textengine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/voicecmd/internal/grammar"
	"github.com/rbright/voicecmd/internal/host"
	"github.com/rbright/voicecmd/internal/vocab"
)

func compile(t *testing.T, resolver *grammar.Resolver, commandID, phrase string) host.Binding {
	t.Helper()
	g, err := grammar.NewCompiler(resolver).Compile(phrase)
	require.NoError(t, err)
	return host.Binding{CommandID: commandID, Grammar: g}
}

func loadedEngine(t *testing.T) *Engine {
	t.Helper()
	texts := vocab.Texts{}
	texts.Set(vocab.SlotYaw, "yaw")
	texts.Set(vocab.SlotPitch, "pitch")
	texts.Set(vocab.SlotRoll, "roll")
	macros := vocab.NewMacroSets()
	macros.Append("ksp/vesselName", "Kerbal X")
	macros.Append("ksp/vesselName", "Bravo")
	resolver := grammar.NewResolver(texts, macros, "point")

	e := New(nil)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, []host.Binding{
		compile(t, resolver, "ksp/throttle", "set throttle to <percentNumber> percent"),
		compile(t, resolver, "ksp/turn", "<axis> <plusMinus> <degreesNumber>"),
		compile(t, resolver, "ksp/switch", "switch to <vesselName>"),
		compile(t, resolver, "ksp/warp", "warp speed <decimalSpeed>"),
	}))
	require.NoError(t, e.Start(ctx))
	return e
}

func TestRecognize(t *testing.T) {
	e := loadedEngine(t)

	tests := []struct {
		text    string
		command string
		params  map[string]string
	}{
		{"Set throttle to 75 percent", "ksp/throttle", map[string]string{"percentNumber": "75"}},
		{"pitch + 90", "ksp/turn", map[string]string{"axis": "pitch", "plusMinus": "+", "degreesNumber": "90"}},
		{"switch to kerbal x", "ksp/switch", map[string]string{"vesselName": "0"}},
		{"warp speed 2 point 5", "ksp/warp", map[string]string{"decimalSpeedInteger": "2", "decimalSpeedFraction": "5"}},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			rec, ok := e.Recognize(tc.text)
			require.True(t, ok)
			require.Equal(t, tc.command, rec.CommandID)
			require.Equal(t, 1.0, rec.Confidence)
			require.Equal(t, tc.params, rec.Parameters)
		})
	}

	for _, miss := range []string{"", "set throttle to 101 percent", "switch to", "roll 5"} {
		_, ok := e.Recognize(miss)
		require.False(t, ok, miss)
	}
}

func TestRecognizeWhileStopped(t *testing.T) {
	e := loadedEngine(t)
	require.NoError(t, e.Stop(context.Background()))
	_, ok := e.Recognize("pitch + 90")
	require.False(t, ok)
}

func TestGrammarChangesWhileBusy(t *testing.T) {
	e := New(nil)
	e.busy = true
	require.ErrorIs(t, e.Load(context.Background(), nil), host.ErrBusy)
	require.ErrorIs(t, e.UnloadAll(context.Background()), host.ErrBusy)

	e.busy = false
	require.NoError(t, e.UnloadAll(context.Background()))
}

func TestFeedEmitsRecognitions(t *testing.T) {
	e := loadedEngine(t)

	err := e.Feed(context.Background(), strings.NewReader("nothing here\nroll - 15\n"))
	require.NoError(t, err)

	rec := <-e.Recognitions()
	require.Equal(t, "ksp/turn", rec.CommandID)
	require.Equal(t, "15", rec.Parameters["degreesNumber"])
	require.Empty(t, e.Recognitions())
}
