package govnc

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Transport is the byte stream a Client runs RFB over: a raw TCP socket, a
// WebSocket-framed relay, or anything else that reads and writes bytes and
// can be closed to unblock a pending read. The Builder takes ownership of
// one for the lifetime of the Client it produces.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// withCancel runs fn to completion, but closes t (unblocking whatever
// blocking read or write fn is stuck in) the moment ctx is cancelled. It
// only matters during the handshake: once the session is running, the
// reader/writer goroutines own cancellation via their own stop channels.
func withCancel(ctx context.Context, t Transport, fn func() error) error {
	if ctx.Done() == nil {
		return fn()
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			t.Close()
		case <-done:
		}
	}()
	err := fn()
	close(done)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// eventChanCapacity is the bounded bridge size in both directions, per
// SPEC_FULL.md §4.6: producers back-pressure against a full channel rather
// than dropping or unbounded-buffering.
const eventChanCapacity = 4096

// Client is a running RFB session: a reader goroutine decoding server
// messages into ServerEvents, a writer goroutine serialising ClientEvents
// (rate-limited for input events) onto the transport, and the shared state
// callers serialise on through mu. The zero value is not usable; construct
// one via Builder.Connect.
type Client struct {
	id     string
	t      Transport
	logger *slog.Logger

	screen      Rect
	pixelFormat PixelFormat

	input  chan ClientEvent
	output chan ServerEvent

	limiter *rate.Limiter

	mu         sync.Mutex
	closed     bool
	closeOnce  sync.Once
	stopReader chan struct{}
	stopWriter chan struct{}
	wg         sync.WaitGroup
}

// ID returns the session's unique identifier, stamped at construction time
// and used to correlate this session's log lines.
func (c *Client) ID() string {
	return c.id
}

// Input enqueues a ClientEvent for the writer goroutine, blocking until
// there is room or the session closes. Equivalent to
// InputContext(context.Background(), ev).
func (c *Client) Input(ev ClientEvent) error {
	return c.InputContext(context.Background(), ev)
}

// InputContext enqueues a ClientEvent, returning ctx.Err() if ctx is done
// first and ErrClientNotRunning if the session has already closed.
func (c *Client) InputContext(ctx context.Context, ev ClientEvent) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientNotRunning
	}
	c.mu.Unlock()

	select {
	case c.input <- ev:
		return nil
	case <-c.stopWriter:
		return ErrClientNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecvEvent blocks for the next ServerEvent, or until ctx is done, or until
// the session closes.
func (c *Client) RecvEvent(ctx context.Context) (ServerEvent, error) {
	select {
	case ev, ok := <-c.output:
		if !ok {
			return ServerEvent{}, ErrClientNotRunning
		}
		return ev, nil
	case <-ctx.Done():
		return ServerEvent{}, ctx.Err()
	}
}

// PollEvent returns the next ServerEvent without blocking, ok=false if none
// is currently queued.
func (c *Client) PollEvent() (ServerEvent, bool, error) {
	select {
	case ev, ok := <-c.output:
		if !ok {
			return ServerEvent{}, false, ErrClientNotRunning
		}
		return ev, true, nil
	default:
		return ServerEvent{}, false, nil
	}
}

// Close idempotently stops both goroutines and releases the transport.
// Further calls to Input return ErrClientNotRunning. RecvEvent and
// PollEvent still return any events that were queued before the close,
// and return ErrClientNotRunning once the queue is empty.
// Closing the transport here, before waiting on the goroutines, is what
// unblocks the reader's in-flight Read promptly rather than waiting for the
// next server message.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stopReader)
		close(c.stopWriter)
		c.t.Close()
	})
	c.wg.Wait()
	return nil
}

func newClientID() string {
	return uuid.NewString()
}
