//go:build windows

package ipc

import (
	"context"
	"errors"
	"io"
	"net"
	"os"

	"golang.org/x/sys/windows"
)

// EndpointPath is the named pipe the Traymond server creates.
const EndpointPath = `\\.\pipe\traymond_ipc`

func dialEndpoint(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// UnavailableReason turns an open failure into a short operator hint.
func UnavailableReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, os.ErrNotExist):
		return "pipe does not exist; traymond is not running"
	case errors.Is(err, windows.ERROR_PIPE_BUSY):
		return "all pipe instances are busy"
	case errors.Is(err, windows.ERROR_PIPE_NOT_CONNECTED):
		return "pipe closed before the connection completed"
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return "access denied opening the pipe"
	default:
		return err.Error()
	}
}

// Listen is not available on Windows; the Traymond server owns the pipe.
func Listen(context.Context, string) (net.Listener, error) {
	return nil, ErrListenUnsupported
}
