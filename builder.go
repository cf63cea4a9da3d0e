package govnc

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// Builder is the only application-facing way to construct a Client: set
// whatever options matter, then Connect to run the handshake and, on
// success, launch the session. A Builder is single-use; build a new one
// per connection attempt.
type Builder struct {
	transport   Transport
	maxVersion  Version
	auth        AuthProvider
	fixedFormat *PixelFormat
	shared      bool
	encodings   []Encoding
	rateLimit   rate.Limit
	rateBurst   int
	logger      *slog.Logger
}

// NewBuilder starts a Builder around a not-yet-handshaken transport. The
// transport is not touched until Connect is called.
func NewBuilder(transport Transport) *Builder {
	return &Builder{
		transport:  transport,
		maxVersion: DefaultVersion,
		rateLimit:  250,
		rateBurst:  50,
	}
}

// SetAuthMethod installs the callback invoked, lazily, only if the server
// picks VNC-Auth during the handshake.
func (b *Builder) SetAuthMethod(auth AuthProvider) *Builder {
	b.auth = auth
	return b
}

// SetVersion clamps the maximum RFB version this client will offer.
func (b *Builder) SetVersion(v Version) *Builder {
	b.maxVersion = v
	return b
}

// SetPixelFormat overrides the server's default PixelFormat: the client
// sends SetPixelFormat during the handshake instead of adopting
// ServerInit's format.
func (b *Builder) SetPixelFormat(pf PixelFormat) *Builder {
	b.fixedFormat = &pf
	return b
}

// AllowShared sets the ClientInit shared-flag: whether other clients
// stay connected once this one attaches.
func (b *Builder) AllowShared(shared bool) *Builder {
	b.shared = shared
	return b
}

// AddEncoding appends an encoding to the priority-ordered SetEncodings
// list. Must be called at least once before Connect.
func (b *Builder) AddEncoding(e Encoding) *Builder {
	b.encodings = append(b.encodings, e)
	return b
}

// SetInputRate bounds the writer goroutine's outbound rate for throttled
// (key/pointer) ClientEvents to eventsPerSecond, each burst up to burst
// events wide. The zero value of either argument leaves input unthrottled.
func (b *Builder) SetInputRate(eventsPerSecond float64, burst int) *Builder {
	if eventsPerSecond <= 0 || burst <= 0 {
		b.rateLimit = rate.Inf
		b.rateBurst = 0
		return b
	}
	b.rateLimit = rate.Limit(eventsPerSecond)
	b.rateBurst = burst
	return b
}

// SetLogger installs a structured logger for session diagnostics. Without
// one, the Client falls back to slog.Default().
func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Connect runs the handshake to completion and, on success, launches the
// session's reader and writer goroutines. A handshake failure starts no
// session goroutine and leaves the transport open for the caller to
// close, except when ctx was cancelled: then the transport has already
// been closed to unblock the pending read or write.
func (b *Builder) Connect(ctx context.Context) (*Client, error) {
	cfg := handshakeConfig{
		maxVersion:  b.maxVersion,
		auth:        b.auth,
		fixedFormat: b.fixedFormat,
		shared:      b.shared,
		encodings:   b.encodings,
	}
	info, err := runHandshake(ctx, b.transport, cfg)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if b.rateLimit != rate.Inf {
		limiter = rate.NewLimiter(b.rateLimit, b.rateBurst)
	}

	return startSession(b.transport, info, limiter, b.logger), nil
}
