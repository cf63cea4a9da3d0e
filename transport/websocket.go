package transport

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket adapts a *websocket.Conn, which speaks discrete messages, into
// a contiguous byte stream: RFB doesn't know about WebSocket framing, so
// Read buffers whatever is left of the current binary message and pulls a
// new one only once that's exhausted. Grounded on the partial-frame
// carry-buffer idiom used to relay binary traffic across a WebSocket
// elsewhere in this stack, adapted here for a read side that hands back
// exactly as many bytes as the caller asked for rather than re-framing on
// a delimiter.
type WebSocket struct {
	conn *websocket.Conn

	readMu  sync.Mutex
	pending []byte

	writeMu sync.Mutex
}

// NewWebSocket wraps an already-established WebSocket connection.
func NewWebSocket(conn *websocket.Conn) *WebSocket {
	return &WebSocket{conn: conn}
}

// Read implements io.Reader, refilling from the next binary WebSocket
// message whenever the previous one has been fully consumed.
func (w *WebSocket) Read(p []byte) (int, error) {
	w.readMu.Lock()
	defer w.readMu.Unlock()

	for len(w.pending) == 0 {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.pending = data
	}
	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

// Write implements io.Writer, sending p as a single binary WebSocket
// message. RFB client messages are always written whole by this package,
// so a write never needs to span multiple frames.
func (w *WebSocket) Write(p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying WebSocket connection, unblocking any
// in-flight Read.
func (w *WebSocket) Close() error {
	return w.conn.Close()
}
