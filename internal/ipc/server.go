package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

var (
	ErrEndpointInUse     = errors.New("traymond endpoint already has a live listener")
	ErrListenUnsupported = errors.New("listening on the traymond endpoint is not supported on this platform")
	// ErrEmptyConnection is reported for connections closed before any byte
	// arrived, which is what an availability probe looks like.
	ErrEmptyConnection = errors.New("connection closed without a record")
)

// Handler receives the outcome of reading one record from one connection.
type Handler interface {
	Handle(context.Context, Record, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Record, error)

func (f HandlerFunc) Handle(ctx context.Context, rec Record, err error) {
	f(ctx, rec, err)
}

// Serve accepts connections until context cancellation or listener close,
// reading exactly one layout-sized record from each. Cancellation also closes
// connections still waiting for a record, so Serve returns even when a peer
// never writes.
func Serve(ctx context.Context, listener net.Listener, layout Layout, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()

			stop := context.AfterFunc(ctx, func() { _ = c.Close() })
			defer stop()

			rec, err := readRecord(c, layout)
			handler.Handle(ctx, rec, err)
		}(conn)
	}
}

func readRecord(r io.Reader, layout Layout) (Record, error) {
	buf := make([]byte, layout.Size())
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return Record{}, ErrEmptyConnection
		}
		return Record{}, fmt.Errorf("read record: got %d of %d bytes: %w", n, len(buf), err)
	}
	return layout.Decode(buf)
}
