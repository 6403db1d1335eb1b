package app

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/rbright/traymondctl/internal/cli"
	"github.com/rbright/traymondctl/internal/config"
	"github.com/rbright/traymondctl/internal/doctor"
	"github.com/rbright/traymondctl/internal/ipc"
	"github.com/rbright/traymondctl/internal/logging"
	"github.com/rbright/traymondctl/internal/version"
)

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// EndpointPath overrides ipc.EndpointPath; tests point it at a temp socket.
	EndpointPath string
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("traymondctl"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("traymondctl"))
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

	client, err := r.client(cfgLoaded.Config)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := setupLogging(cfgLoaded.Config, client)
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
		// A missing file is the normal case; keep it out of the terminal.
		if cfgLoaded.Exists {
			fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	opts := sendOptions{dryRun: parsed.DryRun, probeFirst: cfgLoaded.Config.Send.ProbeFirst}

	switch parsed.Command {
	case cli.CommandMinimize:
		return r.send(ctx, client, ipc.MinimizeCurrent(), opts, logger)
	case cli.CommandMinimizeHandle:
		return r.send(ctx, client, ipc.MinimizeByHandle(parsed.Handle), opts, logger)
	case cli.CommandShowAll:
		return r.send(ctx, client, ipc.ShowAll(), opts, logger)
	case cli.CommandExit:
		return r.send(ctx, client, ipc.Exit(), opts, logger)
	case cli.CommandMenu:
		return r.commandMenu(ctx, client, opts, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx, client)
	case cli.CommandMonitor:
		return r.commandMonitor(ctx, client, logger)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded, client)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) client(cfg config.Config) (ipc.Client, error) {
	layout, err := ipc.LayoutForWordSize(cfg.Server.WordSize)
	if err != nil {
		return ipc.Client{}, err
	}

	client := ipc.NewClient()
	client.Layout = layout
	if r.EndpointPath != "" {
		client.Path = r.EndpointPath
	}
	return client, nil
}

// setupLogging opens the runtime log with the client's endpoint and word size
// attached to every record.
func setupLogging(cfg config.Config, client ipc.Client) (logging.Runtime, error) {
	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return logging.Runtime{}, err
	}
	return logging.New(logging.Options{
		Level:    level,
		Endpoint: client.Endpoint(),
		WordSize: client.Layout.WordSize(),
	})
}

type sendOptions struct {
	dryRun     bool
	probeFirst bool
}

func (r Runner) send(ctx context.Context, client ipc.Client, cmd ipc.Command, opts sendOptions, logger *slog.Logger) int {
	if opts.dryRun {
		payload, err := client.Layout.Encode(cmd)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(r.Stdout, hex.EncodeToString(payload))
		return 0
	}

	var err error
	if opts.probeFirst {
		err = client.Probe(ctx)
	}
	if err == nil {
		err = client.SendCommand(ctx, cmd)
	}

	if err != nil {
		logger.Error("send failed",
			"command", cmd.String(),
			"error", err.Error(),
		)
		if errors.Is(err, ipc.ErrEndpointUnavailable) {
			fmt.Fprintf(r.Stderr, "error: traymond is not running (%s)\n", ipc.UnavailableReason(err))
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logger.Info("command sent",
		"command", cmd.String(),
		"bytes", client.Layout.Size(),
	)
	fmt.Fprintf(r.Stdout, "sent %s\n", cmd)
	return 0
}

func (r Runner) commandMenu(ctx context.Context, client ipc.Client, opts sendOptions, logger *slog.Logger) int {
	stdin := r.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	cmd, err := cli.Menu(stdin, r.Stdout)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return r.send(ctx, client, cmd, opts, logger)
}

func (r Runner) commandStatus(ctx context.Context, client ipc.Client) int {
	if client.Available(ctx) {
		fmt.Fprintln(r.Stdout, "running")
		return 0
	}
	fmt.Fprintln(r.Stdout, "not running")
	return 1
}

func (r Runner) commandMonitor(ctx context.Context, client ipc.Client, logger *slog.Logger) int {
	path := client.Endpoint()
	listener, err := ipc.Listen(ctx, path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	// Closing a unix listener unlinks its socket file.
	defer func() { _ = listener.Close() }()

	fmt.Fprintf(r.Stdout, "listening on %s (%d-byte records)\n", path, client.Layout.Size())
	logger.Info("monitor start", "record_size", client.Layout.Size())

	var mu sync.Mutex
	serveErr := ipc.Serve(ctx, listener, client.Layout, ipc.HandlerFunc(func(_ context.Context, rec ipc.Record, err error) {
		mu.Lock()
		defer mu.Unlock()

		if errors.Is(err, ipc.ErrEmptyConnection) {
			fmt.Fprintln(r.Stdout, "probe")
			return
		}

		var cmd ipc.Command
		if err == nil {
			cmd, err = rec.ToCommand()
		}
		if err != nil {
			fmt.Fprintf(r.Stdout, "invalid record: %v\n", err)
			logger.Warn("monitor invalid record", "error", err.Error())
			return
		}
		fmt.Fprintf(r.Stdout, "received %s\n", cmd)
		logger.Info("monitor record", "command", cmd.String(), "window_handle", rec.WindowHandle)
	}))
	if serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", serveErr)
		return 1
	}
	return 0
}
