package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rbright/voicecmd/internal/audio"
	"github.com/rbright/voicecmd/internal/bindings"
	"github.com/rbright/voicecmd/internal/cli"
	"github.com/rbright/voicecmd/internal/config"
	"github.com/rbright/voicecmd/internal/doctor"
	"github.com/rbright/voicecmd/internal/grammar"
	"github.com/rbright/voicecmd/internal/health"
	"github.com/rbright/voicecmd/internal/host"
	"github.com/rbright/voicecmd/internal/indicator"
	"github.com/rbright/voicecmd/internal/ipc"
	"github.com/rbright/voicecmd/internal/logging"
	"github.com/rbright/voicecmd/internal/registry"
	"github.com/rbright/voicecmd/internal/session"
	"github.com/rbright/voicecmd/internal/syncer"
	"github.com/rbright/voicecmd/internal/textengine"
	"github.com/rbright/voicecmd/internal/transport"
	"github.com/rbright/voicecmd/internal/version"
)

const (
	binaryName    = "voicecmd"
	packetBuffer  = 256
	healthTimeout = time.Second
)

type Runner struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Sources audio.Lister
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// invocation carries everything a command needs after config and logging are set up.
type invocation struct {
	parsed   cli.Parsed
	loaded   config.Loaded
	bindings string
	logger   *slog.Logger
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		if cfgLoaded.Exists || isLongRunning(parsed.Command) {
			fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	inv := invocation{
		parsed:   parsed,
		loaded:   cfgLoaded,
		bindings: config.ResolveBindingsPath(parsed.BindingsPath, cfgLoaded.Config, cfgLoaded.Path),
		logger:   logger,
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"bindings", inv.bindings,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandServe:
		return r.commandServe(ctx, inv)
	case cli.CommandRun:
		return r.commandRun(ctx, inv)
	case cli.CommandCompile:
		return r.commandCompile(inv)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, doctor.Options{
			Config:       cfgLoaded,
			BindingsPath: inv.bindings,
			SocketPath:   socketPathOrEmpty(),
			Sources:      r.Sources,
		})
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandToggle, cli.CommandPTT, cli.CommandPause, cli.CommandResume, cli.CommandResync, cli.CommandMacro:
		return r.forwardOrFail(ctx, string(parsed.Command), parsed.Args...)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func isLongRunning(cmd cli.Command) bool {
	return cmd == cli.CommandServe || cmd == cli.CommandRun
}

// commandServe runs the recognition host with the text engine on stdin.
func (r Runner) commandServe(ctx context.Context, inv invocation) int {
	cfg := inv.loaded.Config
	logger := inv.logger

	if choice, err := audio.Select(ctx, r.Sources, cfg.Audio.Input, cfg.Audio.Fallback); err != nil {
		logger.Warn("audio input selection failed", "error", err.Error())
	} else {
		logger.Info("audio input selected", "source", choice.Source.Name, "note", choice.Note)
	}

	link, err := transport.Listen(
		transport.Addr(cfg.Link.Host, cfg.Link.HostPort),
		transport.Addr(cfg.Link.Host, cfg.Link.ConsumerPort),
		logger,
	)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = link.Close() }()

	healthServer, err := health.Listen(cfg.Health.Addr)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	healthErrCh := make(chan error, 1)
	go func() { healthErrCh <- healthServer.Serve(ctx) }()

	engine := textengine.New(logger)
	policy := host.RetryPolicy{
		Interval:    time.Duration(cfg.Reload.RetryIntervalMS) * time.Millisecond,
		MaxAttempts: cfg.Reload.MaxAttempts,
	}
	adapter := host.NewAdapter(engine, logger, healthServer, policy, grammar.Separator(cfg.Grammar.Language))
	server := &host.Server{
		Adapter: adapter,
		Engine:  engine,
		Applier: syncer.NewReceiver(adapter),
		Out:     link,
		Logger:  logger,
		Console: r.Stdout,
	}

	stdin := r.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	go func() {
		if err := engine.Feed(ctx, stdin); err != nil {
			logger.Error("utterance input failed", "error", err.Error())
		}
		cancel()
	}()

	runErr := server.Run(ctx, link.Receive(ctx, packetBuffer))
	cancel()
	if healthErr := <-healthErrCh; healthErr != nil {
		logger.Error("health server failed", "error", healthErr.Error())
	}
	if runErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		logger.Error("host stopped", "error", runErr.Error())
		return 1
	}
	logger.Info("host stopped")
	return 0
}

// commandRun runs the consumer: bindings, control socket, health monitor, and main loop.
func (r Runner) commandRun(ctx context.Context, inv invocation) int {
	cfg := inv.loaded.Config
	logger := inv.logger

	file, err := loadBindingsOptional(inv.bindings)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(file.Namespaces) == 0 {
		fmt.Fprintf(r.Stderr, "warning: no bindings loaded from %q\n", inv.bindings)
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	link, err := transport.Listen(
		transport.Addr(cfg.Link.Host, cfg.Link.ConsumerPort),
		transport.Addr(cfg.Link.Host, cfg.Link.HostPort),
		logger,
	)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = link.Close() }()

	opts := session.Options{
		MinConfidence:  cfg.Dispatch.MinConfidence,
		PushToTalk:     cfg.Dispatch.PushToTalk,
		PushToTalkHold: time.Duration(cfg.Dispatch.PTTGraceMS) * time.Millisecond,
		Tick:           time.Duration(cfg.Dispatch.TickMS) * time.Millisecond,
	}
	if ind := indicator.New(cfg.Indicator, logger); ind.Enabled() {
		opts.Indicator = ind
		defer ind.Close(context.WithoutCancel(ctx))
	}

	reg := registry.New()
	controller := session.NewController(logger, reg, syncer.NewSender(link, logger), opts)
	if err := controller.RegisterBuiltin(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	commands := bindings.NewModule(file, bindings.ExecRunner{}, logger)
	if err := commands.Register(reg); err != nil {
		fmt.Fprintf(r.Stderr, "error: register bindings: %v\n", err)
		return 1
	}
	defer commands.Wait()

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrCh := make(chan error, 1)
	go func() { serverErrCh <- ipc.Serve(ctx, listener, controller) }()

	monitor := &health.Monitor{
		Addr:      cfg.Health.Addr,
		Interval:  time.Duration(cfg.Health.PollMS) * time.Millisecond,
		Timeout:   healthTimeout,
		OnServing: controller.RequestResync,
		Logger:    logger,
	}
	go monitor.Run(ctx)

	fmt.Fprintf(r.Stdout, "Consumer running (%d namespaces). Control socket: %s\n", len(file.Namespaces), socketPath)
	runErr := controller.Run(ctx, link.Receive(ctx, packetBuffer))
	cancel()

	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}
	if runErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		logger.Error("consumer stopped", "error", runErr.Error())
		return 1
	}
	logger.Info("consumer stopped")
	return 0
}

// commandCompile compiles one phrase against the bindings' macro values and texts.
func (r Runner) commandCompile(inv invocation) int {
	file, err := loadBindingsOptional(inv.bindings)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	reg, err := bindings.Preview(file)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	ws := host.FromSnapshot(reg.Snapshot())
	separator := grammar.Separator(inv.loaded.Config.Grammar.Language)
	compiler := grammar.NewCompiler(grammar.NewResolver(ws.Texts, ws.Macros, separator))

	g, err := compiler.Compile(inv.parsed.Args[0])
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, g.String())
	if keys := g.Keys(); len(keys) > 0 {
		fmt.Fprintf(r.Stdout, "captures: %s\n", strings.Join(keys, ", "))
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	lister := r.Sources
	if lister == nil {
		lister = audio.PulseLister{}
	}
	sources, err := lister.Sources(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(sources) == 0 {
		fmt.Fprintln(r.Stdout, "no audio input sources found")
		return 1
	}
	for _, source := range sources {
		fmt.Fprintln(r.Stdout, source.String())
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "stopped")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if !handled {
		fmt.Fprintln(r.Stdout, "stopped")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, resp.State)
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string, args ...string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command, args...)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running voicecmd consumer\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// tryForward reports handled=false when no consumer is listening.
func tryForward(ctx context.Context, socketPath string, command string, args ...string) (ipc.Response, bool, error) {
	resp, err := ipc.Call(ctx, socketPath, command, args...)
	switch {
	case err == nil:
		return resp, true, nil
	case errors.Is(err, ipc.ErrNoConsumer):
		return ipc.Response{}, false, nil
	case resp.Error != "":
		return resp, true, errors.New(resp.Error)
	default:
		return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
	}
}

func loadBindingsOptional(path string) (bindings.File, error) {
	file, err := bindings.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return bindings.File{}, nil
	}
	return file, err
}

func socketPathOrEmpty() string {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return ""
	}
	return path
}
