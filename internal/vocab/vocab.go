// Package vocab defines the special single-value texts the consumer sends to
// the recognition host, and the macro groups built from them.
package vocab

// Slot names one special single-value text.
type Slot string

const (
	SlotYaw          Slot = "yaw"
	SlotPitch        Slot = "pitch"
	SlotRoll         Slot = "roll"
	SlotPrograde     Slot = "prograde"
	SlotRetrograde   Slot = "retrograde"
	SlotNormal       Slot = "normal"
	SlotAntiNormal   Slot = "antiNormal"
	SlotRadial       Slot = "radial"
	SlotAntiRadial   Slot = "antiRadial"
	SlotApoapsis     Slot = "apoapsis"
	SlotPeriapsis    Slot = "periapsis"
	SlotManeuverNode Slot = "maneuverNode"
	SlotSoI          Slot = "SoI"
)

// Slots lists every slot in wire order.
var Slots = []Slot{
	SlotYaw,
	SlotPitch,
	SlotRoll,
	SlotPrograde,
	SlotRetrograde,
	SlotNormal,
	SlotAntiNormal,
	SlotRadial,
	SlotAntiRadial,
	SlotApoapsis,
	SlotPeriapsis,
	SlotManeuverNode,
	SlotSoI,
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	for _, known := range Slots {
		if s == known {
			return true
		}
	}
	return false
}

// Member binds one slot to the symbolic value a dispatcher receives.
type Member struct {
	Slot  Slot
	Value string
}

// Group is a macro that is only available once every member slot is set.
type Group struct {
	Macro   string
	Members []Member
}

// Groups are the fixed vocabularies, keyed by macro name.
var Groups = map[string]Group{
	"axis": {Macro: "axis", Members: []Member{
		{SlotYaw, "yaw"},
		{SlotPitch, "pitch"},
		{SlotRoll, "roll"},
	}},
	"flightDirection": {Macro: "flightDirection", Members: []Member{
		{SlotPrograde, "prograde"},
		{SlotRetrograde, "retrograde"},
		{SlotNormal, "normal"},
		{SlotAntiNormal, "antiNormal"},
		{SlotRadial, "radial"},
		{SlotAntiRadial, "antiRadial"},
		{SlotManeuverNode, "maneuverNode"},
	}},
	"apPe": {Macro: "apPe", Members: []Member{
		{SlotApoapsis, "ap"},
		{SlotPeriapsis, "pe"},
	}},
	"warpTarget": {Macro: "warpTarget", Members: []Member{
		{SlotApoapsis, "ap"},
		{SlotPeriapsis, "pe"},
		{SlotManeuverNode, "maneuverNode"},
		{SlotSoI, "SoI"},
	}},
}

// Texts holds the spoken text of each slot. Missing and empty are the same.
type Texts map[Slot]string

// Set overwrites one slot; an empty text clears it.
func (t Texts) Set(slot Slot, text string) {
	if text == "" {
		delete(t, slot)
		return
	}
	t[slot] = text
}

// Get returns the text of one slot.
func (t Texts) Get(slot Slot) string {
	return t[slot]
}

// Complete reports whether every member of g has a text.
func (t Texts) Complete(g Group) bool {
	for _, m := range g.Members {
		if t[m.Slot] == "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (t Texts) Clone() Texts {
	out := make(Texts, len(t))
	for k, v := range t {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
