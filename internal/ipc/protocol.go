package ipc

import (
	"errors"
	"fmt"
	"strconv"
)

// Control commands a running consumer answers.
const (
	CommandStatus = "status"
	CommandToggle = "toggle"
	CommandPTT    = "ptt"
	CommandPause  = "pause"
	CommandResume = "resume"
	CommandResync = "resync"
	CommandMacro  = "macro"
)

// ErrBadRequest marks requests rejected before they reach the consumer loop.
var ErrBadRequest = errors.New("bad control request")

// Request is one control command sent to a running consumer.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response is the consumer's reply. State carries the listening/pause summary.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type argRange struct {
	min int
	max int // -1: unbounded
}

func (a argRange) String() string {
	switch {
	case a.max < 0:
		return "at least " + strconv.Itoa(a.min) + " argument(s)"
	case a.min == a.max && a.min == 0:
		return "no arguments"
	case a.min == a.max:
		return "exactly " + strconv.Itoa(a.min) + " argument(s)"
	default:
		return fmt.Sprintf("%d-%d arguments", a.min, a.max)
	}
}

var controlArgs = map[string]argRange{
	CommandStatus: {0, 0},
	CommandToggle: {0, 0},
	CommandPTT:    {1, 1},
	CommandPause:  {0, 0},
	CommandResume: {0, 0},
	CommandResync: {0, 0},
	CommandMacro:  {1, -1},
}

// IsControl reports whether command is answered over the control socket.
func IsControl(command string) bool {
	_, ok := controlArgs[command]
	return ok
}

// Validate checks the command name and argument shape.
func (r Request) Validate() error {
	want, ok := controlArgs[r.Command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrBadRequest, r.Command)
	}
	if n := len(r.Args); n < want.min || (want.max >= 0 && n > want.max) {
		return fmt.Errorf("%w: %s takes %s, got %d", ErrBadRequest, r.Command, want, n)
	}
	if r.Command == CommandPTT && r.Args[0] != "press" && r.Args[0] != "release" {
		return fmt.Errorf("%w: ptt expects press or release, got %q", ErrBadRequest, r.Args[0])
	}
	return nil
}

func failure(err error) Response {
	return Response{OK: false, Error: err.Error()}
}
