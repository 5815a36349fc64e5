package grammar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/voicecmd/internal/vocab"
)

func TestResolveNumericRanges(t *testing.T) {
	r := NewResolver(nil, nil, "")

	tests := []struct {
		name        string
		first, last string
		count       int
	}{
		{"degreesNumber", "0", "359", 360},
		{"actionGroupNumber", "1", "10", 10},
		{"percentNumber", "0", "100", 101},
		{"speedNumber", "0", "10", 11},
		{"decimalDigit", "0", "9", 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fragment, err := r.Resolve(tc.name)
			require.NoError(t, err)
			require.Len(t, fragment.Elements, 1)

			el := fragment.Elements[0]
			require.Equal(t, ElementCapture, el.Kind)
			require.Equal(t, tc.name, el.Key)
			require.Len(t, el.Choices, tc.count)
			require.Equal(t, Choice{Text: tc.first, Value: tc.first}, el.Choices[0])
			require.Equal(t, Choice{Text: tc.last, Value: tc.last}, el.Choices[tc.count-1])
		})
	}
}

func TestResolvePlusMinus(t *testing.T) {
	fragment, err := NewResolver(nil, nil, "").Resolve("plusMinus")
	require.NoError(t, err)
	require.Equal(t, []Choice{{"+", "+"}, {"-", "-"}}, fragment.Elements[0].Choices)
}

func TestResolveGroupRequiresEveryMember(t *testing.T) {
	texts := vocab.Texts{}
	texts.Set(vocab.SlotApoapsis, "apoapsis")
	texts.Set(vocab.SlotPeriapsis, "periapsis")
	texts.Set(vocab.SlotManeuverNode, "maneuver node")

	// 3 of 4 warpTarget members set.
	_, err := NewResolver(texts, nil, "").Resolve("warpTarget")
	require.ErrorIs(t, err, ErrGroupIncomplete)
	require.ErrorIs(t, err, ErrMacroUnresolved)

	// apPe only needs two.
	fragment, err := NewResolver(texts, nil, "").Resolve("apPe")
	require.NoError(t, err)
	require.Equal(t, []Choice{{"apoapsis", "ap"}, {"periapsis", "pe"}}, fragment.Elements[0].Choices)

	texts.Set(vocab.SlotSoI, "sphere of influence")
	fragment, err = NewResolver(texts, nil, "").Resolve("warpTarget")
	require.NoError(t, err)
	require.Equal(t, []Choice{
		{"apoapsis", "ap"},
		{"periapsis", "pe"},
		{"maneuver node", "maneuverNode"},
		{"sphere of influence", "SoI"},
	}, fragment.Elements[0].Choices)
}

func TestResolveDynamicValuesUseIndex(t *testing.T) {
	macros := vocab.NewMacroSets()
	macros.Append("ksp/vesselName", "Alpha")
	macros.Append("ksp/vesselName", "Bravo")

	r := NewResolver(nil, macros, "")

	for _, name := range []string{"ksp/vesselName", "vesselName"} {
		fragment, err := r.Resolve(name)
		require.NoError(t, err, name)
		require.Equal(t, []Choice{{"Alpha", "0"}, {"Bravo", "1"}}, fragment.Elements[0].Choices)
		require.Equal(t, name, fragment.Elements[0].Key)
	}
}

func TestResolveEmptyDynamicSetIsUnresolved(t *testing.T) {
	macros := vocab.NewMacroSets()
	macros.Replace("ksp/crew", nil)

	_, err := NewResolver(nil, macros, "").Resolve("crew")
	require.ErrorIs(t, err, ErrUnknownMacro)
}

func TestResolveUnknown(t *testing.T) {
	_, err := NewResolver(nil, nil, "").Resolve("fooBar")
	require.ErrorIs(t, err, ErrUnknownMacro)
	require.ErrorIs(t, err, ErrMacroUnresolved)
}

func TestResolveDecimalSpeed(t *testing.T) {
	fragment, err := NewResolver(nil, nil, "komma").Resolve("decimalSpeed")
	require.NoError(t, err)
	require.Len(t, fragment.Elements, 3)
	require.Equal(t, KeyDecimalSpeedInteger, fragment.Elements[0].Key)
	require.Len(t, fragment.Elements[0].Choices, 11)
	require.Equal(t, Literal("komma"), fragment.Elements[1])
	require.Equal(t, KeyDecimalSpeedFraction, fragment.Elements[2].Key)
	require.Len(t, fragment.Elements[2].Choices, 10)
}

func TestSeparator(t *testing.T) {
	tests := map[string]string{
		"en-US": "point",
		"en":    "point",
		"de-DE": "komma",
		"nl":    "komma",
		"fr-CA": "virgule",
		"es":    "coma",
		"it":    "virgola",
		"pt-BR": "vírgula",
		"ja":    "point",
		"%%":    "point",
	}
	for tag, want := range tests {
		require.Equal(t, want, Separator(tag), tag)
	}
}
