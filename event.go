package govnc

// ServerEventKind discriminates the ServerEvent union.
type ServerEventKind uint8

const (
	EventSetResolution ServerEventKind = iota
	EventSetPixelFormat
	EventRawImage
	EventCopy
	EventJpegImage
	EventSetCursor
	EventBell
	EventText
	EventError
)

// ServerEvent is everything the reader goroutine can hand to the
// application over the output channel. Only the fields relevant to Kind
// are populated; the rest are zero.
type ServerEvent struct {
	Kind ServerEventKind

	// EventSetResolution (also emitted for the DesktopSize pseudo-encoding)
	Width, Height uint16

	// EventSetPixelFormat
	PixelFormat PixelFormat

	// EventRawImage, EventJpegImage, EventSetCursor
	Rect Rect
	Data []byte // pixel bytes (RawImage/SetCursor) or an opaque JPEG blob (JpegImage)

	// EventCopy
	Dst, Src Rect

	// EventText, EventError
	Text string
}

// ClientEventKind discriminates the ClientEvent union.
type ClientEventKind uint8

const (
	ClientRefresh ClientEventKind = iota
	ClientFullRefresh
	ClientKeyEvent
	ClientPointerEvent
	ClientCopyText
)

// ClientEvent is everything the application can push onto a Client's input
// channel.
type ClientEvent struct {
	Kind ClientEventKind

	// ClientKeyEvent
	Keycode uint32
	Down    bool

	// ClientPointerEvent
	X, Y       uint16
	ButtonMask uint8

	// ClientCopyText
	Text string
}

// Refresh requests an incremental FramebufferUpdate.
func Refresh() ClientEvent { return ClientEvent{Kind: ClientRefresh} }

// FullRefresh requests a non-incremental (full-screen) FramebufferUpdate.
func FullRefresh() ClientEvent { return ClientEvent{Kind: ClientFullRefresh} }

// KeyEvent reports a key press (down=true) or release (down=false).
func KeyEvent(keycode uint32, down bool) ClientEvent {
	return ClientEvent{Kind: ClientKeyEvent, Keycode: keycode, Down: down}
}

// PointerEvent reports pointer motion and/or button state.
func PointerEvent(x, y uint16, buttonMask uint8) ClientEvent {
	return ClientEvent{Kind: ClientPointerEvent, X: x, Y: y, ButtonMask: buttonMask}
}

// CopyText reports the local clipboard's new contents.
func CopyText(text string) ClientEvent {
	return ClientEvent{Kind: ClientCopyText, Text: text}
}

// isThrottled reports whether this event is subject to the writer
// goroutine's input-rate limiter (see SPEC_FULL.md §4.6): only the
// high-frequency peripheral events a GUI can flood the wire with.
func (e ClientEvent) isThrottled() bool {
	return e.Kind == ClientKeyEvent || e.Kind == ClientPointerEvent
}
