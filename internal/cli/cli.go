package cli

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

type Command string

const (
	CommandMinimize       Command = "minimize"
	CommandMinimizeHandle Command = "minimize-handle"
	CommandShowAll        Command = "show-all"
	CommandExit           Command = "exit"
	CommandStatus         Command = "status"
	CommandMenu           Command = "menu"
	CommandMonitor        Command = "monitor"
	CommandDoctor         Command = "doctor"
	CommandVersion        Command = "version"
	CommandHelp           Command = "help"
)

// commandArity is the number of positional arguments each command takes.
var commandArity = map[Command]int{
	CommandMinimize:       0,
	CommandMinimizeHandle: 1,
	CommandShowAll:        0,
	CommandExit:           0,
	CommandStatus:         0,
	CommandMenu:           0,
	CommandMonitor:        0,
	CommandDoctor:         0,
	CommandVersion:        0,
	CommandHelp:           0,
}

type Parsed struct {
	Command    Command
	Handle     uint64
	ConfigPath string
	DryRun     bool
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	var (
		parsed      Parsed
		showHelp    bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("traymondctl", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	flagSet.BoolVar(&parsed.DryRun, "dry-run", false, "print the encoded record instead of sending it")
	flagSet.BoolVarP(&showHelp, "help", "h", false, "show help")
	flagSet.BoolVar(&showVersion, "version", false, "show version")

	if err := flagSet.Parse(args); err != nil {
		return Parsed{}, err
	}

	switch {
	case showHelp:
		parsed.Command, parsed.ShowHelp = CommandHelp, true
		return parsed, nil
	case showVersion:
		parsed.Command = CommandVersion
		return parsed, nil
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		parsed.Command, parsed.ShowHelp = CommandHelp, true
		return parsed, nil
	}

	cmd := Command(positional[0])
	arity, ok := commandArity[cmd]
	if !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", positional[0])
	}

	rest := positional[1:]
	if len(rest) < arity {
		return Parsed{}, fmt.Errorf("command %q requires a window handle", cmd)
	}
	if len(rest) > arity {
		return Parsed{}, fmt.Errorf("unexpected arguments after command %q", cmd)
	}

	if cmd == CommandMinimizeHandle {
		handle, err := ParseHandle(rest[0])
		if err != nil {
			return Parsed{}, err
		}
		parsed.Handle = handle
	}

	parsed.Command = cmd
	parsed.ShowHelp = cmd == CommandHelp
	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--dry-run] <command> [args]

Commands:
  minimize                 Minimize the current foreground window to the tray
  minimize-handle HANDLE   Minimize the window with the given hex handle (e.g. 0x1A2B3C)
  show-all                 Restore every window hidden in the tray
  exit                     Ask traymond to exit
  status                   Report whether traymond is listening
  menu                     Choose a command interactively
  monitor                  Listen on the endpoint and print received records
  doctor                   Run configuration and endpoint checks
  version                  Print version information
  help                     Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/traymondctl/config.jsonc)
  --dry-run       Print the encoded record as hex instead of sending it
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
