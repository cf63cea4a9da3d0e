package govnc

import "io"

// decodeCursor implements the Cursor pseudo-encoding: a bitmap plus a
// 1-bit-per-pixel visibility mask, combined into a single RGBA-ish payload
// by setting each pixel's spare alpha byte (see PixelFormat.alphaByteIndex)
// from its mask bit. A zero-width rect is legal and suppresses rendering.
func decodeCursor(r io.Reader, pf PixelFormat, rect Rect) (ServerEvent, error) {
	bypp := pf.bytesPerPixel()
	pixelData, err := readBytes(r, rect.Area()*bypp)
	if err != nil {
		return ServerEvent{}, err
	}
	maskRowBytes := int((rect.Width + 7) / 8)
	mask, err := readBytes(r, maskRowBytes*int(rect.Height))
	if err != nil {
		return ServerEvent{}, err
	}

	for y := 0; y < int(rect.Height); y++ {
		for x := 0; x < int(rect.Width); x++ {
			maskByte := mask[y*maskRowBytes+x/8]
			visible := maskByte&(1<<uint(7-x%8)) != 0
			off := (y*int(rect.Width) + x) * bypp
			pf.withCursorAlpha(pixelData[off:off+bypp], visible)
		}
	}

	return ServerEvent{Kind: EventSetCursor, Rect: rect, Data: pixelData}, nil
}

// decodeDesktopSize implements the DesktopSize pseudo-encoding: no
// payload, just a resolution change notification.
func decodeDesktopSize(rect Rect) ServerEvent {
	return ServerEvent{Kind: EventSetResolution, Width: rect.Width, Height: rect.Height}
}
