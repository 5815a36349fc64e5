// Package session runs the consumer loop: it owns the command registry, drains
// match packets into the dispatcher, and pushes resyncs when the registry changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/rbright/voicecmd/internal/bindings"
	"github.com/rbright/voicecmd/internal/dispatch"
	"github.com/rbright/voicecmd/internal/ipc"
	"github.com/rbright/voicecmd/internal/packet"
	"github.com/rbright/voicecmd/internal/registry"
)

const (
	// DefaultTick is how often the loop drains packets and checks for changes.
	DefaultTick = 50 * time.Millisecond
	// resyncBackoff spaces out automatic resyncs after a failed send.
	resyncBackoff = time.Second
)

// ErrNotRunning is returned to control requests once the loop has exited.
var ErrNotRunning = errors.New("consumer loop is not running")

// Indicator is told about every gate state change.
type Indicator interface {
	Show(ctx context.Context, state string)
}

// Options tunes the gate and loop cadence.
type Options struct {
	MinConfidence  float64
	PushToTalk     bool
	PushToTalkHold time.Duration
	Tick           time.Duration
	Indicator      Indicator
}

type action struct {
	req   ipc.Request
	reply chan ipc.Response
}

// Controller owns registry, gate, and dispatcher. Everything that touches them
// runs on the Run goroutine; other goroutines post actions.
type Controller struct {
	logger     *slog.Logger
	registry   *registry.Registry
	gate       *dispatch.Gate
	dispatcher *dispatch.Dispatcher
	syncer     Syncer
	indicator  Indicator
	tick       time.Duration

	syncedVersion uint64
	synced        bool
	retryAt       time.Time
	dispatched    int
	shownState    string
	now           func() time.Time

	actions chan action
	done    chan struct{}
}

// NewController constructs a consumer controller over reg.
func NewController(logger *slog.Logger, reg *registry.Registry, syncer Syncer, opts Options) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if reg == nil {
		reg = registry.New()
	}

	gate := dispatch.NewGate()
	gate.PushToTalk = opts.PushToTalk
	if opts.PushToTalk {
		gate.Listening = false
	}
	if opts.PushToTalkHold > 0 {
		gate.Grace = opts.PushToTalkHold
	}

	dispatcher := dispatch.NewDispatcher(reg, gate, logger)
	if opts.MinConfidence > 0 {
		dispatcher.MinConfidence = opts.MinConfidence
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	return &Controller{
		logger:     logger,
		registry:   reg,
		gate:       gate,
		dispatcher: dispatcher,
		syncer:     syncer,
		indicator:  opts.Indicator,
		tick:       tick,
		now:        time.Now,
		actions:    make(chan action, 16),
		done:       make(chan struct{}),
	}
}

// RegisterBuiltin adds the built-in voicecmd namespace wired to this gate.
func (c *Controller) RegisterBuiltin() error {
	return bindings.RegisterBuiltin(c.registry, c.gate.Toggle)
}

// Run is the consumer main loop. It returns when ctx ends or packets closes.
func (c *Controller) Run(ctx context.Context, packets <-chan packet.Packet) error {
	defer close(c.done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	c.shownState = c.status().State()
	c.resync(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-c.actions:
			resp := c.apply(ctx, a.req)
			if a.reply != nil {
				a.reply <- resp
			}
			c.announce(ctx)
		case <-ticker.C:
			if !c.drain(ctx, packets) {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("packet link closed")
			}
			c.announce(ctx)
			if c.registry.Version() != c.syncedVersion || !c.synced {
				if c.now().Before(c.retryAt) {
					continue
				}
				c.resync(ctx, "registry changed")
			}
		}
	}
}

// drain dispatches every queued packet in arrival order. It reports false once
// packets is closed.
func (c *Controller) drain(ctx context.Context, packets <-chan packet.Packet) bool {
	for {
		select {
		case p, ok := <-packets:
			if !ok {
				return false
			}
			if p.Type != packet.TypeMatch {
				c.logger.Debug("ignoring packet", "type", p.Type.String())
				continue
			}
			if c.dispatcher.Dispatch(ctx, p.Data) == dispatch.OutcomeInvoked {
				c.dispatched++
			}
		default:
			return true
		}
	}
}

// announce reports the gate state when it differs from the last one shown.
// Push-to-talk grace expiry and the builtin toggle both land here via the tick.
func (c *Controller) announce(ctx context.Context) {
	state := c.status().State()
	if state == c.shownState {
		return
	}
	c.logger.Info("gate state changed", "from", c.shownState, "to", state)
	c.shownState = state
	if c.indicator != nil {
		c.indicator.Show(ctx, state)
	}
}

func (c *Controller) resync(ctx context.Context, reason string) (string, error) {
	if c.syncer == nil {
		return "", errors.New("no sync link configured")
	}
	snap := c.registry.Snapshot()
	stats, err := c.syncer.Sync(ctx, snap)
	if err != nil {
		c.synced = false
		c.retryAt = c.now().Add(resyncBackoff)
		c.logger.Warn("resync failed", "reason", reason, "error", err.Error())
		return stats.ID, err
	}
	c.synced = true
	c.syncedVersion = snap.Version
	c.retryAt = time.Time{}
	c.logger.Debug("resynced", "reason", reason, "batch", stats.ID, "commands", stats.Commands)
	return stats.ID, nil
}

// Handle serves one control request by posting it to the loop.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	reply := make(chan ipc.Response, 1)
	select {
	case c.actions <- action{req: req, reply: reply}:
	case <-c.done:
		return ipc.Response{OK: false, Error: ErrNotRunning.Error()}
	case <-ctx.Done():
		return ipc.Response{OK: false, Error: ctx.Err().Error()}
	}

	select {
	case resp := <-reply:
		return resp
	case <-c.done:
		return ipc.Response{OK: false, Error: ErrNotRunning.Error()}
	case <-ctx.Done():
		return ipc.Response{OK: false, Error: ctx.Err().Error()}
	}
}

// RequestResync queues a full resync without waiting for it. Used when the
// host comes back after a restart.
func (c *Controller) RequestResync() {
	select {
	case c.actions <- action{req: ipc.Request{Command: "resync"}}:
	default:
	}
}

func (c *Controller) status() Status {
	return Status{
		Listening:     c.gate.Listening,
		Paused:        c.gate.Paused,
		PushToTalk:    c.gate.PushToTalk,
		KeyDown:       c.gate.KeyDown(),
		Version:       c.registry.Version(),
		SyncedVersion: c.syncedVersion,
		Dispatched:    c.dispatched,
	}
}

func (c *Controller) ok(message string) ipc.Response {
	return ipc.Response{OK: true, State: c.status().State(), Message: message}
}

func (c *Controller) fail(format string, args ...any) ipc.Response {
	return ipc.Response{OK: false, State: c.status().State(), Error: fmt.Sprintf(format, args...)}
}

// apply runs one control request on the loop goroutine.
func (c *Controller) apply(ctx context.Context, req ipc.Request) ipc.Response {
	if err := req.Validate(); err != nil {
		return c.fail("%v", err)
	}
	switch req.Command {
	case "status":
		return c.ok(c.status().String())
	case "toggle":
		if c.gate.Toggle() {
			return c.ok("listening on")
		}
		return c.ok("listening off")
	case "ptt":
		if req.Args[0] == "press" {
			c.gate.Press()
		} else {
			c.gate.Release()
		}
		return c.ok("ptt " + req.Args[0])
	case "pause":
		c.gate.Paused = true
		return c.ok("paused")
	case "resume":
		c.gate.Paused = false
		return c.ok("resumed")
	case "resync":
		batch, err := c.resync(ctx, "requested")
		if err != nil {
			return c.fail("resync: %v", err)
		}
		return c.ok("resync sent (batch " + batch + ")")
	case "macro":
		return c.setMacro(req.Args)
	default:
		return c.fail("unknown command: %s", req.Command)
	}
}

func (c *Controller) setMacro(args []string) ipc.Response {
	nsID, macroID, ok := packet.SplitID(args[0])
	if !ok {
		return c.fail("macro id %q must be namespace/macro", args[0])
	}
	known := slices.ContainsFunc(c.registry.Namespaces(), func(ns *registry.Namespace) bool {
		return ns.ID == nsID
	})
	if !known {
		return c.fail("%v: %q", registry.ErrUnknownNamespace, nsID)
	}

	values := slices.Clone(args[1:])
	changed, err := c.registry.SetMacroValues(nsID, macroID, values)
	if err != nil {
		return c.fail("macro %s: %v", args[0], err)
	}
	if !changed {
		return c.ok(fmt.Sprintf("macro %s unchanged", args[0]))
	}
	c.logger.Info("macro values replaced", "macro", args[0], "values", len(values))
	return c.ok(fmt.Sprintf("macro %s set (%d values)", args[0], len(values)))
}
