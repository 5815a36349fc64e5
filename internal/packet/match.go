package packet

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	keyCommand    = "command"
	keyConfidence = "confidence"
)

// Match is a recognition result reported by the host.
type Match struct {
	CommandID  string
	Confidence float64
	Parameters map[string]string
}

// EncodeMatch renders a match payload. Captures follow the fixed keys sorted by name.
func EncodeMatch(m Match) string {
	var b strings.Builder
	b.WriteString(keyCommand + "=" + m.CommandID)
	b.WriteString(Separator + keyConfidence + "=" + strconv.FormatFloat(m.Confidence, 'f', -1, 64))

	keys := make([]string, 0, len(m.Parameters))
	for k := range m.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(Separator + k + "=" + m.Parameters[k])
	}
	return b.String()
}

// MatchPacket wraps an encoded match in a packet.
func MatchPacket(m Match) Packet {
	return New(TypeMatch, EncodeMatch(m))
}

// DecodeMatch parses a match payload. The command and confidence keys are
// required, and confidence must lie in [0, 1].
func DecodeMatch(data string) (Match, error) {
	if data == "" {
		return Match{}, fmt.Errorf("%w: empty match payload", ErrMalformed)
	}

	m := Match{Parameters: map[string]string{}}
	var haveCommand, haveConfidence bool

	for _, pair := range strings.Split(data, Separator) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return Match{}, fmt.Errorf("%w: match pair %q", ErrMalformed, truncate(pair))
		}
		switch key {
		case keyCommand:
			m.CommandID = value
			haveCommand = value != ""
		case keyConfidence:
			confidence, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Match{}, fmt.Errorf("%w: confidence %q: %v", ErrMalformed, value, err)
			}
			if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
				return Match{}, fmt.Errorf("%w: confidence %q outside [0, 1]", ErrMalformed, value)
			}
			m.Confidence = confidence
			haveConfidence = true
		default:
			m.Parameters[key] = value
		}
	}

	if !haveCommand {
		return Match{}, fmt.Errorf("%w: match payload has no command", ErrMalformed)
	}
	if !haveConfidence {
		return Match{}, fmt.Errorf("%w: match payload has no confidence", ErrMalformed)
	}
	return m, nil
}
