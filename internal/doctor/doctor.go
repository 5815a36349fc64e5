// Package doctor runs readiness diagnostics for config, bindings, audio, and the recognition host.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rbright/voicecmd/internal/audio"
	"github.com/rbright/voicecmd/internal/bindings"
	"github.com/rbright/voicecmd/internal/config"
	"github.com/rbright/voicecmd/internal/grammar"
	"github.com/rbright/voicecmd/internal/health"
	"github.com/rbright/voicecmd/internal/host"
	"github.com/rbright/voicecmd/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Options are the inputs to Run.
type Options struct {
	Config       config.Loaded
	BindingsPath string
	SocketPath   string
	Sources      audio.Lister
	Timeout      time.Duration
}

// Run executes config, bindings, audio, and host checks.
func Run(ctx context.Context, opts Options) Report {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	cfg := opts.Config.Config

	checks := []Check{checkConfig(opts.Config)}
	checks = append(checks, checkBindings(opts.BindingsPath, cfg.Grammar.Language)...)
	checks = append(checks, checkConsumer(ctx, opts.SocketPath, timeout))
	checks = append(checks, checkAudioSelection(ctx, opts.Sources, cfg))
	checks = append(checks, checkHostHealth(ctx, cfg.Health.Addr, timeout))

	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	if !loaded.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", loaded.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", loaded.Path)}
}

// checkBindings loads the bindings file and compiles every phrase the way
// the host would.
func checkBindings(path, language string) []Check {
	file, err := bindings.Load(path)
	if err != nil {
		return []Check{{Name: "bindings", Pass: false, Message: err.Error()}}
	}

	commands := 0
	for _, ns := range file.Namespaces {
		commands += len(ns.Commands)
	}
	loaded := Check{
		Name:    "bindings",
		Pass:    true,
		Message: fmt.Sprintf("%q: %d namespaces, %d commands", path, len(file.Namespaces), commands),
	}

	reg, err := bindings.Preview(file)
	if err != nil {
		return []Check{loaded, {Name: "grammar", Pass: false, Message: err.Error()}}
	}

	adapter := host.NewAdapter(nil, nil, nil, host.DefaultRetryPolicy(), grammar.Separator(language))
	_, report := adapter.Compile(host.FromSnapshot(reg.Snapshot()))
	if len(report.Skipped) > 0 {
		first := report.Skipped[0]
		return []Check{loaded, {
			Name: "grammar",
			Pass: false,
			Message: fmt.Sprintf("%d of %d phrases skipped; first: %s %q: %v",
				len(report.Skipped), len(report.Skipped)+len(report.Loaded),
				first.Phrase.CommandID, first.Phrase.Text, first.Err),
		}}
	}
	return []Check{loaded, {
		Name:    "grammar",
		Pass:    true,
		Message: fmt.Sprintf("%d phrases compile", len(report.Loaded)),
	}}
}

// checkConsumer reports whether a consumer is running. It never fails.
func checkConsumer(ctx context.Context, socketPath string, timeout time.Duration) Check {
	if strings.TrimSpace(socketPath) == "" {
		return Check{Name: "consumer", Pass: true, Message: "no runtime socket path (XDG_RUNTIME_DIR unset)"}
	}
	alive, err := ipc.Probe(ctx, socketPath, timeout)
	switch {
	case err != nil:
		return Check{Name: "consumer", Pass: true, Message: fmt.Sprintf("probe %s: %v", socketPath, err)}
	case alive:
		return Check{Name: "consumer", Pass: true, Message: "running at " + socketPath}
	default:
		return Check{Name: "consumer", Pass: true, Message: "not running"}
	}
}

// checkAudioSelection runs live source selection to surface fallback issues.
func checkAudioSelection(ctx context.Context, sources audio.Lister, cfg config.Config) Check {
	choice, err := audio.Select(ctx, sources, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.input", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", choice.Source.Name)
	if choice.Note != "" {
		message += " (" + choice.Note + ")"
	}
	return Check{Name: "audio.input", Pass: true, Message: message}
}

// checkHostHealth asks the recognition host whether a grammar set is installed.
func checkHostHealth(ctx context.Context, addr string, timeout time.Duration) Check {
	resp, err := health.Check(ctx, addr, timeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no answer within %s", timeout)
		}
		return Check{Name: "host.health", Pass: false, Message: fmt.Sprintf("%s: %v", addr, err)}
	}
	return Check{
		Name:    "host.health",
		Pass:    resp.GetStatus() == healthpb.HealthCheckResponse_SERVING,
		Message: fmt.Sprintf("%s %s", addr, health.Render(resp)),
	}
}
