package indicator

type announcement struct {
	cue     cueKind
	message string
}

// announcements is keyed by the consumer's one-word gate state.
var announcements = map[string]announcement{
	"listening":    {cue: cueWake, message: "Listening for voice commands"},
	"sleeping":     {cue: cueSleep, message: "Voice commands asleep"},
	"paused":       {cue: cuePause, message: "Voice commands paused"},
	"push-to-talk": {cue: cueSleep, message: "Push-to-talk ready"},
	"talking":      {cue: cueTalk, message: "Talking"},
}
