package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONCRemovesCommentsAndTrailingCommas(t *testing.T) {
	input := `
{
  // line comment
  "items": [
    "one", /* block comment */
    "two",
  ],
  "nested": {
    "enabled": true,
  },
}
`

	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.NotContains(t, normalized, "//")
	require.NotContains(t, normalized, "/*")
	require.NotContains(t, normalized, ",]")
	require.NotContains(t, normalized, ",}")
}

func TestNormalizeJSONCRetainsCommentLikeTextInsideStrings(t *testing.T) {
	input := `{"value":"contains // and /* comment-like */ text",}`
	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.Contains(t, normalized, "// and /* comment-like */")
}

func TestNormalizeJSONCUnterminatedBlockCommentFails(t *testing.T) {
	_, err := normalizeJSONC("{ /* unterminated ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestEnsureSingleJSONValueRejectsExtraPayload(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"one":1}{"two":2}`))
	var payload map[string]any
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
}

func TestOffsetToLineCol(t *testing.T) {
	content := "line1\nline2\nline3"
	line, col := offsetToLineCol(content, 1)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = offsetToLineCol(content, 8) // line2, col2
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = offsetToLineCol(content, 999)
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}

func TestParseJSONCTrimsAndOverlaysFields(t *testing.T) {
	cfg, warnings, err := parseJSONC(`{
  "link": {"host": "  localhost  ", "host_port": 49000},
  "grammar": {"language": " de-DE "},
  "bindings": "  ksp.yaml ",
  "indicator": {"sound": true, "app_name": " kerbal "},
  "log": {"level": " DEBUG "},
}`, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "localhost", cfg.Link.Host)
	require.Equal(t, 49000, cfg.Link.HostPort)
	require.Equal(t, Default().Link.ConsumerPort, cfg.Link.ConsumerPort)
	require.Equal(t, "de-DE", cfg.Grammar.Language)
	require.Equal(t, "ksp.yaml", cfg.Bindings)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Indicator.Sound)
	require.False(t, cfg.Indicator.Desktop)
	require.Equal(t, "kerbal", cfg.Indicator.AppName)
}

func TestParseJSONCWarnsOnWarningLevelSpelling(t *testing.T) {
	cfg, warnings, err := parseJSONC(`{"log": {"level": "warning"}}`, Default())
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Len(t, warnings, 1)
}

func TestParseJSONCRejectsMultipleTopLevelValues(t *testing.T) {
	_, _, err := parseJSONC(`{"dispatch":{"push_to_talk":false}}{"dispatch":{"push_to_talk":true}}`, Default())
	require.Error(t, err)
	require.True(
		t,
		strings.Contains(err.Error(), "multiple JSON values") || strings.Contains(err.Error(), "unknown field"),
		"unexpected error: %v",
		err,
	)
}

func TestParseJSONCTypeErrorIncludesLocation(t *testing.T) {
	_, _, err := parseJSONC(`{
  "link": {"consumer_port": "48285"}
}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line")
	require.Contains(t, err.Error(), "column")
}
