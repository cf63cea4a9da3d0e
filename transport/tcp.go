// Package transport provides the byte-stream adapters govnc.Builder
// expects: anything satisfying io.Reader, io.Writer and io.Closer. TCP is
// the common case; WebSocket lets a browser-hosted client reach an RFB
// server through a WS-to-TCP gateway.
package transport

import (
	"context"
	"net"
)

// TCP dials addr and returns the raw connection; net.Conn already
// satisfies govnc.Transport, so no wrapping is needed.
func TCP(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

// TCPContext is TCP with dial cancellation, for callers that want Connect's
// ctx to also bound the initial dial rather than just the handshake.
func TCPContext(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}
