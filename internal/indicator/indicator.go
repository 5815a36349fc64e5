// Package indicator announces consumer gate changes with short audio cues and
// replaceable freedesktop notifications.
package indicator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/voicecmd/internal/config"
)

const dispatchTimeout = 400 * time.Millisecond

// Indicator implements the consumer's state announcer. The zero value is not
// usable; construct with New.
type Indicator struct {
	cfg    config.IndicatorConfig
	logger *slog.Logger
	play   func([]int16) error

	mu             sync.Mutex
	notificationID uint32

	soundMu sync.Mutex
	pending sync.WaitGroup
}

// New creates an indicator from config. A nil logger discards failures.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Indicator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indicator{cfg: cfg, logger: logger, play: playSynthCue}
}

// Enabled reports whether any output is configured.
func (i *Indicator) Enabled() bool {
	return i.cfg.Sound || i.cfg.Desktop
}

// Show announces a gate state as reported by the consumer status. Unknown
// states are ignored.
func (i *Indicator) Show(ctx context.Context, state string) {
	a, ok := announcements[state]
	if !ok {
		i.logger.Debug("indicator state has no announcement", "state", state)
		return
	}
	i.playCue(a.cue)
	if !i.cfg.Desktop {
		return
	}
	i.run(ctx, func(ctx context.Context) error {
		return i.notify(ctx, a.message)
	})
}

// Close dismisses the current notification and waits for queued cues.
func (i *Indicator) Close(ctx context.Context) {
	if i.cfg.Desktop {
		i.run(ctx, i.dismiss)
	}
	i.pending.Wait()
}

func (i *Indicator) notify(ctx context.Context, text string) error {
	i.mu.Lock()
	replaceID := i.notificationID
	i.mu.Unlock()

	id, err := desktopNotify(ctx, i.cfg.AppName, replaceID, text, i.cfg.TimeoutMS)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.notificationID = id
	i.mu.Unlock()
	return nil
}

func (i *Indicator) dismiss(ctx context.Context) error {
	i.mu.Lock()
	id := i.notificationID
	i.notificationID = 0
	i.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run bounds one notification round trip so a stuck bus never stalls the caller.
func (i *Indicator) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := fn(runCtx); err != nil {
		i.logger.Debug("indicator notification failed", "error", err.Error())
	}
}

// playCue plays asynchronously; cues never overlap.
func (i *Indicator) playCue(kind cueKind) {
	if !i.cfg.Sound {
		return
	}
	samples := cueSamples(kind)
	if len(samples) == 0 {
		return
	}
	i.pending.Add(1)
	go func() {
		defer i.pending.Done()
		i.soundMu.Lock()
		defer i.soundMu.Unlock()
		if err := i.play(samples); err != nil {
			i.logger.Debug("indicator audio cue failed", "error", err.Error())
		}
	}()
}
