// Package packet encodes and decodes the datagrams exchanged between the
// command consumer and the recognition host.
package packet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Separator delimits the type code from the payload, and the parts of
// add-command/add-macro-value and match payloads.
const Separator = "|"

// IDSeparator joins a namespace id with a command or macro id.
const IDSeparator = "/"

// Type is the wire type code of a packet. Values are fixed for interoperability.
type Type int

const (
	TypeMatch                Type = 1
	TypeClear                Type = 2
	TypeEndOfBatch           Type = 3
	TypeAddCommand           Type = 4
	TypeSetYaw               Type = 5
	TypeSetPitch             Type = 6
	TypeSetRoll              Type = 7
	TypeSetPrograde          Type = 8
	TypeSetRetrograde        Type = 9
	TypeSetNormal            Type = 10
	TypeSetAntiNormal        Type = 11
	TypeSetRadial            Type = 12
	TypeSetAntiRadial        Type = 13
	TypeSetApoapsis          Type = 14
	TypeSetPeriapsis         Type = 15
	TypeSetManeuverNode      Type = 16
	TypeSetSphereOfInfluence Type = 17
	TypeAddMacroValue        Type = 18
)

var typeNames = map[Type]string{
	TypeMatch:                "match",
	TypeClear:                "clear",
	TypeEndOfBatch:           "end-of-batch",
	TypeAddCommand:           "add-command",
	TypeSetYaw:               "set-yaw",
	TypeSetPitch:             "set-pitch",
	TypeSetRoll:              "set-roll",
	TypeSetPrograde:          "set-prograde",
	TypeSetRetrograde:        "set-retrograde",
	TypeSetNormal:            "set-normal",
	TypeSetAntiNormal:        "set-anti-normal",
	TypeSetRadial:            "set-radial",
	TypeSetAntiRadial:        "set-anti-radial",
	TypeSetApoapsis:          "set-apoapsis",
	TypeSetPeriapsis:         "set-periapsis",
	TypeSetManeuverNode:      "set-maneuver-node",
	TypeSetSphereOfInfluence: "set-sphere-of-influence",
	TypeAddMacroValue:        "add-macro-value",
}

// String returns a log-friendly type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Valid reports whether t is a known wire type.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ErrMalformed marks datagrams that cannot be decoded.
var ErrMalformed = errors.New("malformed packet")

// Packet is one typed datagram. An empty Data is the absent payload.
type Packet struct {
	Type Type
	Data string
}

// New builds a packet with an optional payload.
func New(t Type, data string) Packet {
	return Packet{Type: t, Data: data}
}

// HasData reports whether the payload is present.
func (p Packet) HasData() bool {
	return p.Data != ""
}

// String renders the wire form.
func (p Packet) String() string {
	return strconv.Itoa(int(p.Type)) + Separator + p.Data
}

// Encode returns the UTF-8 wire bytes of p.
func Encode(p Packet) []byte {
	return []byte(p.String())
}

// Decode parses one datagram.
func Decode(b []byte) (Packet, error) {
	raw := string(b)
	pos := strings.Index(raw, Separator)
	if pos < 0 {
		return Packet{}, fmt.Errorf("%w: missing separator in %q", ErrMalformed, truncate(raw))
	}

	code, err := strconv.Atoi(raw[:pos])
	if err != nil {
		return Packet{}, fmt.Errorf("%w: type code %q: %v", ErrMalformed, truncate(raw[:pos]), err)
	}
	t := Type(code)
	if !t.Valid() {
		return Packet{}, fmt.Errorf("%w: unknown type code %d", ErrMalformed, code)
	}

	return Packet{Type: t, Data: raw[pos+1:]}, nil
}

// JoinID builds a full id from a namespace id and a local id.
func JoinID(namespaceID, id string) string {
	return namespaceID + IDSeparator + id
}

// SplitID splits a full id at its first separator.
func SplitID(fullID string) (namespaceID, id string, ok bool) {
	namespaceID, id, ok = strings.Cut(fullID, IDSeparator)
	if !ok || namespaceID == "" || id == "" {
		return "", "", false
	}
	return namespaceID, id, true
}

// EncodeEntry builds the `<fullId>|<text>` payload of add-command and add-macro-value.
func EncodeEntry(fullID, text string) string {
	return fullID + Separator + text
}

// DecodeEntry splits an add-command/add-macro-value payload.
func DecodeEntry(data string) (fullID, text string, err error) {
	fullID, text, ok := strings.Cut(data, Separator)
	if !ok || fullID == "" || text == "" {
		return "", "", fmt.Errorf("%w: entry payload %q", ErrMalformed, truncate(data))
	}
	return fullID, text, nil
}

// truncate shortens s to at most 64 bytes for error messages, cutting on a
// rune boundary.
func truncate(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
