//go:build !windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// EndpointPath is the unix-domain socket standing in for the Windows pipe
// on development hosts.
const EndpointPath = "/tmp/traymond_ipc.sock"

func dialEndpoint(ctx context.Context, path string) (io.WriteCloser, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// UnavailableReason turns an open failure into a short operator hint.
func UnavailableReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, os.ErrNotExist):
		return "socket does not exist; traymond is not running"
	case errors.Is(err, unix.ECONNREFUSED):
		return "nothing accepts connections on the socket; traymond is not running"
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return "permission denied opening the socket"
	default:
		return err.Error()
	}
}

// Listen binds the endpoint for the development monitor. A stale socket left
// by a dead listener is removed once; a live one yields ErrEndpointInUse.
func Listen(ctx context.Context, path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure endpoint dir: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err == nil {
		return listener, nil
	}
	if !errors.Is(err, unix.EADDRINUSE) {
		return nil, fmt.Errorf("listen unix %s: %w", path, err)
	}

	if (Client{Path: path}).Available(ctx) {
		return nil, ErrEndpointInUse
	}
	if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket %s: %w", path, removeErr)
	}

	listener, err = net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen unix %s: %w", path, err)
	}
	return listener, nil
}
