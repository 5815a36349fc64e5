package syncer

import (
	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/vocab"
)

var slotTypes = map[vocab.Slot]packet.Type{
	vocab.SlotYaw:          packet.TypeSetYaw,
	vocab.SlotPitch:        packet.TypeSetPitch,
	vocab.SlotRoll:         packet.TypeSetRoll,
	vocab.SlotPrograde:     packet.TypeSetPrograde,
	vocab.SlotRetrograde:   packet.TypeSetRetrograde,
	vocab.SlotNormal:       packet.TypeSetNormal,
	vocab.SlotAntiNormal:   packet.TypeSetAntiNormal,
	vocab.SlotRadial:       packet.TypeSetRadial,
	vocab.SlotAntiRadial:   packet.TypeSetAntiRadial,
	vocab.SlotApoapsis:     packet.TypeSetApoapsis,
	vocab.SlotPeriapsis:    packet.TypeSetPeriapsis,
	vocab.SlotManeuverNode: packet.TypeSetManeuverNode,
	vocab.SlotSoI:          packet.TypeSetSphereOfInfluence,
}

var typeSlots = invertSlotTypes()

func invertSlotTypes() map[packet.Type]vocab.Slot {
	out := make(map[packet.Type]vocab.Slot, len(slotTypes))
	for slot, t := range slotTypes {
		out[t] = slot
	}
	return out
}

// SlotType returns the packet type that carries slot.
func SlotType(slot vocab.Slot) (packet.Type, bool) {
	t, ok := slotTypes[slot]
	return t, ok
}
