package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEndpointUnavailable means nothing is listening at the endpoint,
	// usually because Traymond is not running.
	ErrEndpointUnavailable = errors.New("traymond endpoint unavailable")
	// ErrWriteFailed means the endpoint opened but the record was not fully written.
	ErrWriteFailed = errors.New("write to traymond endpoint failed")
)

type dialFunc func(ctx context.Context, path string) (io.WriteCloser, error)

// Client delivers one record per call to the Traymond endpoint. Nothing is
// read back: a nil error means the bytes reached the transport, not that the
// server acted on them.
type Client struct {
	Path   string
	Layout Layout

	dial dialFunc
}

// NewClient targets the fixed service endpoint with the 64-bit layout.
func NewClient() Client {
	return Client{Path: EndpointPath, Layout: Layout64}
}

// Send opens the endpoint, writes payload in one write, and closes.
func (c Client) Send(ctx context.Context, payload []byte) error {
	conn, err := c.open(ctx)
	if err != nil {
		return err
	}

	n, err := conn.Write(payload)
	if err == nil && n < len(payload) {
		err = io.ErrShortWrite
	}
	closeErr := conn.Close()

	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrWriteFailed, n, len(payload), err)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close: %w", ErrWriteFailed, closeErr)
	}
	return nil
}

// Available opens and immediately releases the endpoint. The answer can be
// stale by the time a following Send runs.
func (c Client) Available(ctx context.Context) bool {
	return c.Probe(ctx) == nil
}

// Probe is Available with the open failure kept for diagnostics.
func (c Client) Probe(ctx context.Context) error {
	conn, err := c.open(ctx)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}

// SendCommand encodes cmd with the client's layout and sends it.
func (c Client) SendCommand(ctx context.Context, cmd Command) error {
	payload, err := c.Layout.Encode(cmd)
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmd, err)
	}
	return c.Send(ctx, payload)
}

func (c Client) MinimizeCurrent(ctx context.Context) error {
	return c.SendCommand(ctx, MinimizeCurrent())
}

func (c Client) MinimizeByHandle(ctx context.Context, handle uint64) error {
	return c.SendCommand(ctx, MinimizeByHandle(handle))
}

func (c Client) ShowAll(ctx context.Context) error {
	return c.SendCommand(ctx, ShowAll())
}

func (c Client) Exit(ctx context.Context) error {
	return c.SendCommand(ctx, Exit())
}

// Endpoint is the path this client opens.
func (c Client) Endpoint() string {
	if c.Path == "" {
		return EndpointPath
	}
	return c.Path
}

func (c Client) open(ctx context.Context) (io.WriteCloser, error) {
	dial := c.dial
	if dial == nil {
		dial = dialEndpoint
	}

	path := c.Endpoint()
	conn, err := dial(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrEndpointUnavailable, path, err)
	}
	return conn, nil
}
