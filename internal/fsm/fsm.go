// Package fsm holds the phase machine a sync sender walks for one full resync.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle                State = "idle"
	StateClearing            State = "clearing"
	StateSendingCommands     State = "sending_commands"
	StateSendingMacroValues  State = "sending_macro_values"
	StateSendingSpecialTexts State = "sending_special_texts"
	StateEnded               State = "ended"
	StateError               State = "error"
)

const (
	EventStart           Event = "start"
	EventCleared         Event = "cleared"
	EventCommandsSent    Event = "commands_sent"
	EventMacroValuesSent Event = "macro_values_sent"
	EventTextsSent       Event = "texts_sent"
	EventFinish          Event = "finish"
	EventFail            Event = "fail"
	EventReset           Event = "reset"
)

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateClearing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateClearing:
		switch event {
		case EventCleared:
			return StateSendingCommands, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSendingCommands:
		switch event {
		case EventCommandsSent:
			return StateSendingMacroValues, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSendingMacroValues:
		switch event {
		case EventMacroValuesSent:
			return StateSendingSpecialTexts, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSendingSpecialTexts:
		switch event {
		case EventTextsSent:
			return StateEnded, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateEnded:
		switch event {
		case EventFinish:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
