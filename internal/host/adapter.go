package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/voicecmd/internal/grammar"
)

const (
	// SelfTestPhrase is always loaded so a user can check the microphone path.
	SelfTestPhrase = "test 1 2 3"
	// SelfTestCommandID is reported for SelfTestPhrase and never forwarded.
	SelfTestCommandID = "voicecmd/voiceTest"
)

// ErrReloadExhausted is returned when the engine stayed busy for every attempt.
var ErrReloadExhausted = errors.New("grammar reload attempts exhausted")

// RetryPolicy bounds reload retries on ErrBusy. MaxAttempts 0 retries forever.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy mirrors the engine's typical busy window.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: 100 * time.Millisecond}
}

// StatusReporter is told whether a grammar set is currently installed.
type StatusReporter interface {
	SetServing(serving bool)
}

type noopStatus struct{}

func (noopStatus) SetServing(bool) {}

// SkippedPhrase records one phrase that failed to compile.
type SkippedPhrase struct {
	Phrase Phrase
	Err    error
}

// Report summarizes one install.
type Report struct {
	Loaded   []Phrase
	Skipped  []SkippedPhrase
	Attempts int
}

// Adapter compiles working sets and drives the engine's reload sequence.
type Adapter struct {
	engine    Engine
	logger    *slog.Logger
	status    StatusReporter
	policy    RetryPolicy
	separator string
	compiler  *grammar.Compiler

	sleep func(context.Context, time.Duration) error
}

// NewAdapter constructs an adapter. separator is the decimal separator word
// for the configured language.
func NewAdapter(engine Engine, logger *slog.Logger, status StatusReporter, policy RetryPolicy, separator string) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if status == nil {
		status = noopStatus{}
	}
	return &Adapter{
		engine:    engine,
		logger:    logger,
		status:    status,
		policy:    policy,
		separator: separator,
		compiler:  grammar.NewCompiler(nil),
		sleep:     sleepContext,
	}
}

// ResetTemplates drops cached template parses.
func (a *Adapter) ResetTemplates() {
	a.compiler.Reset()
}

// Compile resolves every phrase of ws. Failures are skipped and reported.
// The self-test phrase is always appended.
func (a *Adapter) Compile(ws WorkingSet) ([]Binding, Report) {
	a.compiler.SetResolver(grammar.NewResolver(ws.Texts, ws.Macros, a.separator))

	var (
		bindings []Binding
		report   Report
	)
	for _, phrase := range ws.Phrases {
		g, err := a.compiler.Compile(phrase.Text)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedPhrase{Phrase: phrase, Err: err})
			continue
		}
		bindings = append(bindings, Binding{CommandID: phrase.CommandID, Grammar: g})
		report.Loaded = append(report.Loaded, phrase)
	}

	selfTest, err := a.compiler.Compile(SelfTestPhrase)
	if err == nil {
		bindings = append(bindings, Binding{CommandID: SelfTestCommandID, Grammar: selfTest})
	}
	return bindings, report
}

// Install replaces the engine's grammars with the compiled form of ws.
func (a *Adapter) Install(ctx context.Context, ws WorkingSet) (Report, error) {
	a.status.SetServing(false)

	if err := a.engine.Stop(ctx); err != nil {
		a.logger.Warn("engine stop failed", "error", err.Error())
	}

	bindings, report := a.Compile(ws)
	for _, skipped := range report.Skipped {
		a.logger.Warn("skipping command phrase",
			"command", skipped.Phrase.CommandID,
			"phrase", skipped.Phrase.Text,
			"error", skipped.Err.Error(),
		)
	}

	for attempt := 1; ; attempt++ {
		report.Attempts = attempt
		err := a.reload(ctx, bindings)
		if err == nil {
			a.status.SetServing(true)
			a.logger.Info("grammars installed",
				"loaded", len(report.Loaded),
				"skipped", len(report.Skipped),
				"attempts", attempt,
			)
			return report, nil
		}
		if !errors.Is(err, ErrBusy) {
			return report, fmt.Errorf("reload grammars: %w", err)
		}
		if a.policy.MaxAttempts > 0 && attempt >= a.policy.MaxAttempts {
			if unloadErr := a.engine.UnloadAll(ctx); unloadErr != nil {
				a.logger.Warn("engine unload after exhausted reload failed", "error", unloadErr.Error())
			}
			return report, fmt.Errorf("%w after %d attempts: %w", ErrReloadExhausted, attempt, err)
		}

		a.logger.Debug("engine busy, retrying reload", "attempt", attempt, "interval", a.policy.Interval.String())
		if err := a.sleep(ctx, a.policy.Interval); err != nil {
			return report, err
		}
	}
}

func (a *Adapter) reload(ctx context.Context, bindings []Binding) error {
	if err := a.engine.UnloadAll(ctx); err != nil {
		return err
	}
	if err := a.engine.Load(ctx, bindings); err != nil {
		return err
	}
	return a.engine.Start(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
