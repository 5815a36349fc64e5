package syncer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/voicecmd/internal/host"
	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/vocab"
)

type fakeInstaller struct {
	installs []host.WorkingSet
	resets   int
}

func (f *fakeInstaller) Install(_ context.Context, ws host.WorkingSet) (host.Report, error) {
	f.installs = append(f.installs, ws)
	return host.Report{}, nil
}

func (f *fakeInstaller) ResetTemplates() {
	f.resets++
}

func (f *fakeInstaller) last() host.WorkingSet {
	return f.installs[len(f.installs)-1]
}

func apply(t *testing.T, r *Receiver, packets ...packet.Packet) {
	t.Helper()
	for _, p := range packets {
		require.NoError(t, r.Apply(context.Background(), p))
	}
}

func TestReceiverInstallsOnlyAtEndOfBatch(t *testing.T) {
	inst := &fakeInstaller{}
	r := NewReceiver(inst)

	apply(t, r,
		packet.New(packet.TypeClear, ""),
		packet.New(packet.TypeAddCommand, "ksp/stage|stage"),
		packet.New(packet.TypeSetPitch, "pitch"),
	)
	require.Empty(t, inst.installs)
	require.Equal(t, 1, inst.resets)

	apply(t, r, packet.New(packet.TypeEndOfBatch, ""))
	require.Len(t, inst.installs, 1)
	require.Equal(t, []host.Phrase{{CommandID: "ksp/stage", Text: "stage"}}, inst.last().Phrases)
	require.Equal(t, "pitch", inst.last().Texts.Get(vocab.SlotPitch))
}

func TestReceiverDoesNotMixBatches(t *testing.T) {
	inst := &fakeInstaller{}
	r := NewReceiver(inst)

	apply(t, r,
		packet.New(packet.TypeClear, ""),
		packet.New(packet.TypeAddCommand, "ksp/a|alpha"),
		packet.New(packet.TypeAddMacroValue, "ksp/vesselName|Alpha"),
		packet.New(packet.TypeEndOfBatch, ""),
		packet.New(packet.TypeClear, ""),
		packet.New(packet.TypeAddCommand, "ksp/b|bravo"),
	)

	installed := inst.last()
	require.Equal(t, []host.Phrase{{CommandID: "ksp/a", Text: "alpha"}}, installed.Phrases)
	values, ok := installed.Macros.Get("ksp/vesselName")
	require.True(t, ok)
	require.Equal(t, []string{"Alpha"}, values)

	// Later mutation of the working copy does not leak into the installed set.
	apply(t, r, packet.New(packet.TypeAddMacroValue, "ksp/vesselName|Bravo"))
	values, _ = installed.Macros.Get("ksp/vesselName")
	require.Equal(t, []string{"Alpha"}, values)

	apply(t, r, packet.New(packet.TypeEndOfBatch, ""))
	require.Equal(t, []host.Phrase{{CommandID: "ksp/b", Text: "bravo"}}, inst.last().Phrases)
	values, _ = inst.last().Macros.Get("ksp/vesselName")
	require.Equal(t, []string{"Bravo"}, values)
}

func TestReceiverInstalledEqualsWorkingAtLastEnd(t *testing.T) {
	sequences := [][]packet.Packet{
		{
			packet.New(packet.TypeEndOfBatch, ""),
			packet.New(packet.TypeAddCommand, "ksp/a|alpha"),
			packet.New(packet.TypeEndOfBatch, ""),
			packet.New(packet.TypeSetYaw, "yaw"),
		},
		{
			packet.New(packet.TypeAddCommand, "ksp/a|alpha"),
			packet.New(packet.TypeAddCommand, "ksp/a|alpha"),
			packet.New(packet.TypeSetRoll, "roll"),
			packet.New(packet.TypeSetRoll, ""),
			packet.New(packet.TypeEndOfBatch, ""),
			packet.New(packet.TypeClear, ""),
		},
	}

	for i, seq := range sequences {
		inst := &fakeInstaller{}
		r := NewReceiver(inst)

		var wantAtEnd host.WorkingSet
		for _, p := range seq {
			require.NoError(t, r.Apply(context.Background(), p))
			if p.Type == packet.TypeEndOfBatch {
				wantAtEnd = r.Working()
			}
		}
		require.Equal(t, wantAtEnd, inst.last(), "sequence %d", i)
	}
}

func TestReceiverStaleEndOfBatchIsSupersededByLaterEnd(t *testing.T) {
	inst := &fakeInstaller{}
	r := NewReceiver(inst)

	apply(t, r,
		packet.New(packet.TypeClear, ""),
		packet.New(packet.TypeAddCommand, "ksp/b1|first"),
		// End of an earlier batch arriving late.
		packet.New(packet.TypeEndOfBatch, ""),
	)
	require.Len(t, inst.installs, 1)
	require.Equal(t, []host.Phrase{{CommandID: "ksp/b1", Text: "first"}}, inst.last().Phrases)

	apply(t, r,
		packet.New(packet.TypeAddCommand, "ksp/b2|second"),
		packet.New(packet.TypeEndOfBatch, ""),
	)
	require.Len(t, inst.installs, 2)
	require.Equal(t, []host.Phrase{
		{CommandID: "ksp/b1", Text: "first"},
		{CommandID: "ksp/b2", Text: "second"},
	}, inst.last().Phrases)
	require.Equal(t, 1, inst.resets)
}

func TestReceiverAppendsWithoutDedup(t *testing.T) {
	inst := &fakeInstaller{}
	r := NewReceiver(inst)
	apply(t, r,
		packet.New(packet.TypeAddMacroValue, "ksp/crew|Jeb"),
		packet.New(packet.TypeAddMacroValue, "ksp/crew|Jeb"),
		packet.New(packet.TypeEndOfBatch, ""),
	)
	values, _ := inst.last().Macros.Get("ksp/crew")
	require.Equal(t, []string{"Jeb", "Jeb"}, values)
}

func TestReceiverRejectsMalformedEntries(t *testing.T) {
	r := NewReceiver(&fakeInstaller{})
	require.ErrorIs(t, r.Apply(context.Background(), packet.New(packet.TypeAddCommand, "no-separator")), packet.ErrMalformed)
	require.ErrorIs(t, r.Apply(context.Background(), packet.New(packet.TypeAddMacroValue, "")), packet.ErrMalformed)
	require.NoError(t, r.Apply(context.Background(), packet.New(packet.TypeMatch, "command=x/y|confidence=1")))
}
