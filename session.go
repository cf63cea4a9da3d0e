package govnc

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/time/rate"
)

// startSession builds a Client around an already-handshaken transport and
// launches its reader and writer goroutines. info.initial (SetResolution,
// and SetPixelFormat when the server's default was adopted) is queued
// before either goroutine runs, so it's always the first thing RecvEvent
// sees.
func startSession(t Transport, info *serverInfo, limiter *rate.Limiter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		id:          newClientID(),
		t:           t,
		logger:      logger,
		screen:      info.screen,
		pixelFormat: info.pixelFormat,
		input:       make(chan ClientEvent, eventChanCapacity),
		output:      make(chan ServerEvent, eventChanCapacity+len(info.initial)),
		limiter:     limiter,
		stopReader:  make(chan struct{}),
		stopWriter:  make(chan struct{}),
	}
	for _, ev := range info.initial {
		c.output <- ev
	}

	decoders := &decoderSet{}
	c.wg.Add(2)
	go c.runReader(decoders)
	go c.runWriter()
	return c
}

// runReader repeatedly parses one server message at a time, forwarding
// every ServerEvent it yields to the output channel in arrival order. It
// drains until Close fires stopReader or the transport reports EOF.
func (c *Client) runReader(decoders *decoderSet) {
	defer c.wg.Done()
	defer close(c.output)

	for {
		select {
		case <-c.stopReader:
			return
		default:
		}

		events, err := decoders.readServerMessage(c.t, c.pixelFormat)
		if err != nil {
			c.reportReaderError(err)
			return
		}

		for _, ev := range events {
			select {
			case c.output <- ev:
			case <-c.stopReader:
				return
			}
		}
	}
}

// reportReaderError classifies a reader-loop error: a clean EOF is only
// logged at Debug; Close tearing down the transport out from under us is
// not an error at all; anything else is logged at Error and surfaced to the
// application as a final EventError. In every case the session then tears
// itself down.
func (c *Client) reportReaderError(err error) {
	c.mu.Lock()
	closing := c.closed
	c.mu.Unlock()

	switch {
	case errors.Is(err, io.EOF):
		c.logger.Debug("govnc: server closed connection", "session", c.id)
	case closing:
		// Close() closed the transport to unblock us; not a real failure.
	default:
		c.logger.Error("govnc: transport error", "session", c.id, "err", err)
		select {
		case c.output <- ServerEvent{Kind: EventError, Text: err.Error()}:
		default:
		}
	}
	go c.Close()
}

// runWriter drains the input channel, writing each ClientEvent to the
// transport in arrival order. Throttled events (key/pointer) wait on the
// input-rate limiter first; Refresh/FullRefresh/CopyText are never
// throttled, since they're application-paced, not user-input-paced.
func (c *Client) runWriter() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopWriter:
			return
		case ev := <-c.input:
			if c.limiter != nil && ev.isThrottled() {
				if err := c.limiter.Wait(context.Background()); err != nil {
					return
				}
			}
			if err := sendClientEvent(c.t, ev, c.screen); err != nil {
				c.reportWriterError(err)
				return
			}
		}
	}
}

func (c *Client) reportWriterError(err error) {
	c.mu.Lock()
	closing := c.closed
	c.mu.Unlock()
	if !closing {
		c.logger.Error("govnc: transport write error", "session", c.id, "err", err)
	}
	go c.Close()
}
