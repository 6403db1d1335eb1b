//go:build !windows

package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServeReportsProbeAsEmptyConnection(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	received := startRecordServer(t, socketPath, Layout64)

	require.True(t, Client{Path: socketPath}.Available(context.Background()))

	got := waitDelivery(t, received)
	require.ErrorIs(t, got.err, ErrEmptyConnection)
}

func TestServeReportsTruncatedRecord(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	received := startRecordServer(t, socketPath, Layout64)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	_, err = conn.Write([]byte{1, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	got := waitDelivery(t, received)
	require.Error(t, got.err)
	require.Contains(t, got.err.Error(), "read record: got 4 of 272 bytes")
}

func TestServeReportsUnknownCode(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	received := startRecordServer(t, socketPath, Layout64)

	payload := make([]byte, Layout64.Size())
	payload[0] = 0x7F
	require.NoError(t, Client{Path: socketPath}.Send(context.Background(), payload))

	got := waitDelivery(t, received)
	require.ErrorIs(t, got.err, ErrUnknownCommand)
}

func TestListenRecoversStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	listener, err := Listen(context.Background(), socketPath)
	require.NoError(t, err)
	defer listener.Close()

	require.True(t, Client{Path: socketPath}.Available(context.Background()))
}

func TestListenReturnsInUseWhenLive(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()

	_, err = Listen(context.Background(), socketPath)
	require.ErrorIs(t, err, ErrEndpointInUse)

	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
}

func TestServeReturnsOnCancelWithSilentPeer(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "traymond.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan error, 1)
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, Layout64, HandlerFunc(func(_ context.Context, _ Record, err error) {
			received <- err
		}))
	}()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	// Let Serve accept the connection and block reading it.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	select {
	case err := <-received:
		require.Error(t, err)
	default:
		t.Fatal("handler was not called for the silent connection")
	}
}
