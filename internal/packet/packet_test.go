package packet

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
		wire   string
	}{
		{name: "absent payload", packet: New(TypeClear, ""), wire: "2|"},
		{name: "end of batch", packet: New(TypeEndOfBatch, ""), wire: "3|"},
		{name: "add command", packet: New(TypeAddCommand, "ksp/stage|activate stage"), wire: "4|ksp/stage|activate stage"},
		{name: "special text", packet: New(TypeSetSphereOfInfluence, "sphere of influence"), wire: "17|sphere of influence"},
		{name: "macro value", packet: New(TypeAddMacroValue, "ksp/vesselName|Kerbal X"), wire: "18|ksp/vesselName|Kerbal X"},
		{name: "utf8 payload", packet: New(TypeSetYaw, "Gieren ä"), wire: "5|Gieren ä"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wire := Encode(tc.packet)
			require.Equal(t, tc.wire, string(wire))

			decoded, err := Decode(wire)
			require.NoError(t, err)
			require.Equal(t, tc.packet, decoded)
		})
	}
}

func TestDecodeAbsentPayloadHasNoData(t *testing.T) {
	p, err := Decode([]byte("2|"))
	require.NoError(t, err)
	require.Equal(t, TypeClear, p.Type)
	require.False(t, p.HasData())
}

func TestDecodeRejectsMalformedDatagrams(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no separator", input: "4"},
		{name: "non numeric type", input: "x|data"},
		{name: "unknown type", input: "99|data"},
		{name: "zero type", input: "0|"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.input))
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestTypeCodesAreFixed(t *testing.T) {
	require.Equal(t, 1, int(TypeMatch))
	require.Equal(t, 2, int(TypeClear))
	require.Equal(t, 3, int(TypeEndOfBatch))
	require.Equal(t, 4, int(TypeAddCommand))
	require.Equal(t, 15, int(TypeSetPeriapsis))
	require.Equal(t, 16, int(TypeSetManeuverNode))
	require.Equal(t, 17, int(TypeSetSphereOfInfluence))
	require.Equal(t, 18, int(TypeAddMacroValue))
	require.Equal(t, "add-macro-value", TypeAddMacroValue.String())
	require.Equal(t, "type(42)", Type(42).String())
}

func TestEntryPayload(t *testing.T) {
	data := EncodeEntry(JoinID("ksp", "quicksave"), "quick save")
	require.Equal(t, "ksp/quicksave|quick save", data)

	fullID, text, err := DecodeEntry(data)
	require.NoError(t, err)
	require.Equal(t, "ksp/quicksave", fullID)
	require.Equal(t, "quick save", text)

	fullID, text, err = DecodeEntry("ksp/x|text with | pipe")
	require.NoError(t, err)
	require.Equal(t, "ksp/x", fullID)
	require.Equal(t, "text with | pipe", text)

	_, _, err = DecodeEntry("ksp/x")
	require.ErrorIs(t, err, ErrMalformed)
	_, _, err = DecodeEntry("|text")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short", in: "stage", want: "stage"},
		{name: "ascii", in: strings.Repeat("a", 70), want: strings.Repeat("a", 64) + "..."},
		{name: "rune straddles limit", in: strings.Repeat("a", 63) + "ü" + "bbb", want: strings.Repeat("a", 63) + "..."},
		{name: "three byte runes", in: strings.Repeat("日", 30), want: strings.Repeat("日", 21) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in)
			require.Equal(t, tt.want, got)
			require.True(t, utf8.ValidString(got))
		})
	}
}

func TestDecodeEntryErrorIsValidUTF8(t *testing.T) {
	_, _, err := DecodeEntry(strings.Repeat("ö", 40))
	require.ErrorIs(t, err, ErrMalformed)
	require.True(t, utf8.ValidString(err.Error()))
}

func TestSplitID(t *testing.T) {
	ns, id, ok := SplitID("mechJeb/turnAxis")
	require.True(t, ok)
	require.Equal(t, "mechJeb", ns)
	require.Equal(t, "turnAxis", id)

	_, _, ok = SplitID("noSeparator")
	require.False(t, ok)
	_, _, ok = SplitID("/missingNamespace")
	require.False(t, ok)
}
