//go:build !windows

package ipc

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAvailableFalseWithoutListener(t *testing.T) {
	client := Client{Path: filepath.Join(t.TempDir(), "traymond.sock")}
	require.False(t, client.Available(context.Background()))
}

func TestAvailableTrueOnceListenerExists(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	client := Client{Path: socketPath}
	require.False(t, client.Available(context.Background()))

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	require.True(t, client.Available(context.Background()))
}

func TestSendWithoutListenerIsEndpointUnavailable(t *testing.T) {
	client := Client{Path: filepath.Join(t.TempDir(), "traymond.sock")}

	err := client.MinimizeCurrent(context.Background())
	require.ErrorIs(t, err, ErrEndpointUnavailable)
	require.NotErrorIs(t, err, ErrWriteFailed)
	require.Contains(t, UnavailableReason(err), "not running")

	err = client.Send(context.Background(), []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrEndpointUnavailable)
}

func TestSendSucceedsWhenListenerPresent(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	client := Client{Path: socketPath}
	require.NoError(t, client.Send(context.Background(), make([]byte, Layout64.Size())))
}

func TestConvenienceCommandsReachServer(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	received := startRecordServer(t, socketPath, Layout64)
	client := Client{Path: socketPath, Layout: Layout64}
	ctx := context.Background()

	tests := []struct {
		name string
		send func() error
		want Command
	}{
		{name: "minimize current", send: func() error { return client.MinimizeCurrent(ctx) }, want: MinimizeCurrent()},
		{name: "minimize by handle", send: func() error { return client.MinimizeByHandle(ctx, 0x1A2B3C) }, want: MinimizeByHandle(0x1A2B3C)},
		{name: "show all", send: func() error { return client.ShowAll(ctx) }, want: ShowAll()},
		{name: "exit", send: func() error { return client.Exit(ctx) }, want: Exit()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.send())

			got := waitDelivery(t, received)
			require.NoError(t, got.err)
			cmd, err := got.rec.ToCommand()
			require.NoError(t, err)
			require.Equal(t, tc.want, cmd)
		})
	}
}

func TestSendCommand32BitLayout(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	received := startRecordServer(t, socketPath, Layout32)
	client := Client{Path: socketPath, Layout: Layout32}

	require.NoError(t, client.MinimizeByHandle(context.Background(), 0xFFFFFFFF))
	got := waitDelivery(t, received)
	require.NoError(t, got.err)
	require.Equal(t, uint64(0xFFFFFFFF), got.rec.WindowHandle)
}

func TestMinimizeByHandleRejectsOverflowBeforeDialing(t *testing.T) {
	dialed := false
	client := Client{Layout: Layout32, dial: func(context.Context, string) (io.WriteCloser, error) {
		dialed = true
		return &fakeConn{}, nil
	}}

	err := client.MinimizeByHandle(context.Background(), 1<<40)
	require.ErrorIs(t, err, ErrInvalidHandle)
	require.False(t, dialed)
}

func TestSendWriteFailures(t *testing.T) {
	tests := []struct {
		name     string
		conn     *fakeConn
		wantPart string
	}{
		{name: "peer closed", conn: &fakeConn{writeErr: errors.New("broken pipe")}, wantPart: "broken pipe"},
		{name: "short write", conn: &fakeConn{limit: 10}, wantPart: "short write"},
		{name: "close failure", conn: &fakeConn{closeErr: errors.New("flush failed")}, wantPart: "close"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := Client{dial: func(context.Context, string) (io.WriteCloser, error) {
				return tc.conn, nil
			}}

			err := client.ShowAll(context.Background())
			require.ErrorIs(t, err, ErrWriteFailed)
			require.NotErrorIs(t, err, ErrEndpointUnavailable)
			require.Contains(t, err.Error(), tc.wantPart)
			require.True(t, tc.conn.closed, "connection must be released")
		})
	}
}

func TestSendWritesWholeRecordOnce(t *testing.T) {
	conn := &fakeConn{}
	client := Client{dial: func(_ context.Context, path string) (io.WriteCloser, error) {
		require.Equal(t, EndpointPath, path)
		return conn, nil
	}}

	require.NoError(t, client.Exit(context.Background()))
	require.Equal(t, 1, conn.writes)
	require.Len(t, conn.written, Layout64.Size())
	require.True(t, conn.closed)
}

func TestAvailableReleasesConnection(t *testing.T) {
	conn := &fakeConn{}
	client := Client{dial: func(context.Context, string) (io.WriteCloser, error) { return conn, nil }}

	require.True(t, client.Available(context.Background()))
	require.True(t, conn.closed)
	require.Zero(t, conn.writes)
}

func TestSendCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := Client{Path: filepath.Join(t.TempDir(), "traymond.sock")}
	err := client.ShowAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type fakeConn struct {
	limit    int
	writeErr error
	closeErr error

	writes  int
	written []byte
	closed  bool
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writes++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if c.limit > 0 && len(p) > c.limit {
		p = p[:c.limit]
	}
	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.closeErr
}

type delivery struct {
	rec Record
	err error
}

func startRecordServer(t *testing.T, socketPath string, layout Layout) <-chan delivery {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan delivery, 16)
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, layout, HandlerFunc(func(_ context.Context, rec Record, err error) {
			received <- delivery{rec: rec, err: err}
		}))
	}()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-serveDone)
	})
	return received
}

func waitDelivery(t *testing.T, received <-chan delivery) delivery {
	t.Helper()
	select {
	case d := <-received:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for record")
		return delivery{}
	}
}
