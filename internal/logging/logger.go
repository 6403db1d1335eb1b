// Package logging configures runtime JSONL logging output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Runtime bundles the configured logger and its open file handle lifecycle.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

// Close closes the logger output sink.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Options selects the level and the endpoint context stamped on every record.
type Options struct {
	Level    slog.Level
	Endpoint string
	WordSize int
}

// New builds a JSONL logger rooted at the resolved state path. Every record
// carries the pid and, when set, the endpoint path and server word size.
func New(opts Options) (Runtime, error) {
	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, err
	}

	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: opts.Level})
	return Runtime{Logger: slog.New(h).With(opts.attrs()...), Path: path, closer: f}, nil
}

func (o Options) attrs() []any {
	attrs := []any{"pid", os.Getpid()}
	if o.Endpoint != "" {
		attrs = append(attrs, "endpoint", o.Endpoint)
	}
	if o.WordSize != 0 {
		attrs = append(attrs, "word_size", o.WordSize)
	}
	return attrs
}

// Discard returns a runtime whose logger drops every record.
func Discard() Runtime {
	return Runtime{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// resolveLogPath selects XDG_STATE_HOME when available, otherwise ~/.local/state.
func resolveLogPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "traymondctl", "log.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "traymondctl", "log.jsonl"), nil
}
