package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rbright/voicecmd/internal/ipc"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandRun     Command = "run"
	CommandToggle  Command = "toggle"
	CommandPTT     Command = "ptt"
	CommandPause   Command = "pause"
	CommandResume  Command = "resume"
	CommandResync  Command = "resync"
	CommandMacro   Command = "macro"
	CommandStatus  Command = "status"
	CommandCompile Command = "compile"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// EngineText is the line-oriented reference recognition engine.
const EngineText = "text"

type arity struct {
	min int
	max int // -1 is unbounded
}

var validCommands = map[Command]arity{
	CommandServe:   {0, 0},
	CommandRun:     {0, 0},
	CommandToggle:  {0, 0},
	CommandPTT:     {1, 1},
	CommandPause:   {0, 0},
	CommandResume:  {0, 0},
	CommandResync:  {0, 0},
	CommandMacro:   {1, -1},
	CommandStatus:  {0, 0},
	CommandCompile: {1, -1},
	CommandDevices: {0, 0},
	CommandDoctor:  {0, 0},
	CommandVersion: {0, 0},
	CommandHelp:    {0, 0},
}

type Parsed struct {
	Command      Command
	Args         []string
	ConfigPath   string
	BindingsPath string
	Engine       string
	ShowHelp     bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true, Engine: EngineText}

	flags := pflag.NewFlagSet("voicecmd", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SetInterspersed(false)
	flags.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	flags.StringVar(&parsed.BindingsPath, "bindings", "", "bindings file path")
	help := flags.BoolP("help", "h", false, "show help")
	version := flags.Bool("version", false, "show version")

	if err := flags.Parse(args); err != nil {
		return Parsed{}, normalizeFlagError(err)
	}
	if *help {
		return parsed, nil
	}
	if *version {
		parsed.Command = CommandVersion
		parsed.ShowHelp = false
		return parsed, nil
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return parsed, nil
	}

	cmd := Command(rest[0])
	want, ok := validCommands[cmd]
	if !ok {
		if strings.HasPrefix(rest[0], "-") {
			return Parsed{}, fmt.Errorf("unknown flag: %s", rest[0])
		}
		return Parsed{}, fmt.Errorf("unknown command: %s", rest[0])
	}
	parsed.Command = cmd
	parsed.ShowHelp = cmd == CommandHelp

	cmdArgs := rest[1:]
	if cmd == CommandServe {
		engine, remaining, err := parseServeFlags(cmdArgs)
		if err != nil {
			return Parsed{}, err
		}
		parsed.Engine = engine
		cmdArgs = remaining
	}

	if len(cmdArgs) < want.min {
		return Parsed{}, fmt.Errorf("command %q requires %s", cmd, usageArgs(cmd))
	}
	if want.max >= 0 && len(cmdArgs) > want.max {
		return Parsed{}, fmt.Errorf("unexpected arguments after command %q", cmd)
	}
	if ipc.IsControl(string(cmd)) {
		if err := (ipc.Request{Command: string(cmd), Args: cmdArgs}).Validate(); err != nil {
			return Parsed{}, err
		}
	}
	if cmd == CommandCompile {
		cmdArgs = []string{strings.Join(cmdArgs, " ")}
	}
	parsed.Args = cmdArgs

	return parsed, nil
}

func parseServeFlags(args []string) (string, []string, error) {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	engine := flags.String("engine", EngineText, "recognition engine")
	if err := flags.Parse(args); err != nil {
		return "", nil, normalizeFlagError(err)
	}
	if *engine != EngineText {
		return "", nil, fmt.Errorf("unknown engine %q (available: %s)", *engine, EngineText)
	}
	return *engine, flags.Args(), nil
}

func normalizeFlagError(err error) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unknown flag"), strings.HasPrefix(msg, "unknown shorthand flag"):
		return errors.New(strings.Replace(msg, "unknown shorthand flag", "unknown flag", 1))
	case strings.HasPrefix(msg, "flag needs an argument"):
		return fmt.Errorf("%s requires a value", strings.TrimPrefix(msg, "flag needs an argument: "))
	default:
		return err
	}
}

func usageArgs(cmd Command) string {
	switch cmd {
	case CommandPTT:
		return "press|release"
	case CommandMacro:
		return "a macro id (namespace/macro) and optional values"
	case CommandCompile:
		return "a phrase"
	default:
		return "arguments"
	}
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--bindings PATH] <command> [args]

Commands:
  serve [--engine text]   Run the grammar host (recognizes lines from stdin)
  run                     Run the command consumer
  toggle                  Toggle listening on the running consumer
  ptt press|release       Push-to-talk key state
  pause                   Pause dispatch (execute-always commands still run)
  resume                  Resume dispatch
  resync                  Push a full resync to the host
  macro ID [VALUES...]    Replace a macro value set (ID is namespace/macro)
  status                  Print consumer state
  compile PHRASE          Compile a phrase against the bindings and print it
  devices                 List available input devices
  doctor                  Run configuration and environment checks
  version                 Print version information
  help                    Show this help

Flags:
  --config PATH     Config file path (default: $XDG_CONFIG_HOME/voicecmd/config.jsonc)
  --bindings PATH   Bindings file path (default: bindings.yaml beside the config)
  -h, --help        Show help
  --version         Show version
`, binaryName)
}
