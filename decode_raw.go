package govnc

import "io"

// decodeRaw reads width*height*bpp/8 bytes verbatim and emits them as a
// single RawImage event; the bytes are already in the session's negotiated
// pixel format, so no conversion is needed.
func decodeRaw(r io.Reader, pf PixelFormat, rect Rect) (ServerEvent, error) {
	data, err := readBytes(r, rect.Area()*pf.bytesPerPixel())
	if err != nil {
		return ServerEvent{}, err
	}
	return ServerEvent{Kind: EventRawImage, Rect: rect, Data: data}, nil
}

// decodeCopyRect reads the source origin and emits a Copy event; no pixel
// data crosses the wire, the renderer blits from its own framebuffer.
func decodeCopyRect(r io.Reader, rect Rect) (ServerEvent, error) {
	var sx, sy uint16
	if err := readBE(r, &sx); err != nil {
		return ServerEvent{}, err
	}
	if err := readBE(r, &sy); err != nil {
		return ServerEvent{}, err
	}
	src := Rect{X: sx, Y: sy, Width: rect.Width, Height: rect.Height}
	return ServerEvent{Kind: EventCopy, Dst: rect, Src: src}, nil
}
