package govnc

import "io"

// decodeTRLE reuses ZRLE's tile codec (decodeRLETile) for a single tile
// spanning the whole rectangle: no outer zlib framing, no 64x64 tiling,
// because the server has already pre-tiled the image into this rectangle.
func decodeTRLE(r io.Reader, pf PixelFormat, rect Rect) (ServerEvent, error) {
	bypp := pf.bytesPerPixel()
	out := make([]byte, rect.Area()*bypp)
	if err := decodeRLETile(r, pf, out, int(rect.Width), 0, 0, int(rect.Width), int(rect.Height)); err != nil {
		return ServerEvent{}, err
	}
	return ServerEvent{Kind: EventRawImage, Rect: rect, Data: out}, nil
}
