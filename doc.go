// Package govnc implements the client side of the Remote Framebuffer (RFB)
// protocol (RFC 6143), as used by VNC.
//
// A caller supplies a Transport (typically a net.Conn, or a WebSocket via
// transport.WebSocket) to a Builder, configures authentication and the
// encodings it wants to receive, then calls Connect. The returned Client
// drives a reader goroutine (transport -> decoder -> ServerEvent channel)
// and a writer goroutine (ClientEvent channel -> transport) for the
// lifetime of the session.
package govnc
