package govnc

import (
	"io"

	"github.com/hsujv/govnc/internal/zlibstream"
)

// tightDecoder owns the four persistent zlib streams Tight rectangles draw
// from, selected by stream-id and reset via the control byte's low nibble.
// It lives for the lifetime of a session, not a single rectangle.
type tightDecoder struct {
	streams [4]zlibstream.Stream
}

// readCompactLength reads Tight's variable-length size prefix: 1-3 bytes,
// 7 payload bits each, continuation signalled by the top bit.
func readCompactLength(r io.Reader) (int, error) {
	b, err := readBytes(r, 1)
	if err != nil {
		return 0, err
	}
	length := int(b[0] & 0x7f)
	if b[0]&0x80 == 0 {
		return length, nil
	}
	b, err = readBytes(r, 1)
	if err != nil {
		return 0, err
	}
	length |= int(b[0]&0x7f) << 7
	if b[0]&0x80 == 0 {
		return length, nil
	}
	b, err = readBytes(r, 1)
	if err != nil {
		return 0, err
	}
	length |= int(b[0]) << 14
	return length, nil
}

// readTightData reads an n-byte payload subject to Tight's threshold-12
// rule: below 12 bytes the data travels raw, at or above it is prefixed by
// a compact length and zlib-compressed against the given persistent stream.
func (d *tightDecoder) readTightData(r io.Reader, streamID uint8, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 12 {
		return readBytes(r, n)
	}
	length, err := readCompactLength(r)
	if err != nil {
		return nil, err
	}
	compact, err := readBytes(r, length)
	if err != nil {
		return nil, err
	}
	out, err := d.streams[streamID].Inflate(compact, n)
	if err != nil {
		return nil, InvalidImageDataError{Msg: err.Error()}
	}
	return out, nil
}

func (d *tightDecoder) decode(r io.Reader, pf PixelFormat, rect Rect) (ServerEvent, error) {
	ctrlByte, err := readBytes(r, 1)
	if err != nil {
		return ServerEvent{}, err
	}
	ctrl := ctrlByte[0]
	for i := 0; i < 4; i++ {
		if ctrl&(1<<uint(i)) != 0 {
			d.streams[i].Reset()
		}
	}

	nibble := ctrl >> 4
	switch {
	case nibble == 0x8:
		return d.fill(r, pf, rect)
	case nibble == 0x9:
		return d.jpeg(r, rect)
	case nibble == 0xA:
		return ServerEvent{}, InvalidImageDataError{Msg: "png received in standard Tight rect"}
	case nibble&0x8 == 0:
		return d.basic(r, pf, rect, nibble)
	default:
		return ServerEvent{}, InvalidImageDataError{Msg: "illegal tight compression control"}
	}
}

func (d *tightDecoder) fill(r io.Reader, pf PixelFormat, rect Rect) (ServerEvent, error) {
	color, err := readBytes(r, 3)
	if err != nil {
		return ServerEvent{}, err
	}
	pixel := pf.EncodeRGB(color[0], color[1], color[2])
	bypp := len(pixel)
	out := make([]byte, rect.Area()*bypp)
	for i := 0; i < rect.Area(); i++ {
		copy(out[i*bypp:], pixel)
	}
	return ServerEvent{Kind: EventRawImage, Rect: rect, Data: out}, nil
}

func (d *tightDecoder) jpeg(r io.Reader, rect Rect) (ServerEvent, error) {
	n, err := readCompactLength(r)
	if err != nil {
		return ServerEvent{}, err
	}
	data, err := readBytes(r, n)
	if err != nil {
		return ServerEvent{}, err
	}
	return ServerEvent{Kind: EventJpegImage, Rect: rect, Data: data}, nil
}

func (d *tightDecoder) basic(r io.Reader, pf PixelFormat, rect Rect, nibble uint8) (ServerEvent, error) {
	streamID := nibble & 0x3
	filter := uint8(0)
	if nibble&0x4 != 0 {
		b, err := readBytes(r, 1)
		if err != nil {
			return ServerEvent{}, err
		}
		filter = b[0]
	}
	switch filter {
	case 0:
		return d.copyFilter(r, pf, rect, streamID)
	case 1:
		return d.paletteFilter(r, pf, rect, streamID)
	case 2:
		return d.gradientFilter(r, pf, rect, streamID)
	default:
		return ServerEvent{}, InvalidImageDataError{Msg: "illegal tight filter"}
	}
}

func (d *tightDecoder) copyFilter(r io.Reader, pf PixelFormat, rect Rect, streamID uint8) (ServerEvent, error) {
	n := rect.Area() * 3
	data, err := d.readTightData(r, streamID, n)
	if err != nil {
		return ServerEvent{}, err
	}
	bypp := pf.bytesPerPixel()
	out := make([]byte, rect.Area()*bypp)
	for i := 0; i*3 < n; i++ {
		pixel := pf.EncodeRGB(data[i*3], data[i*3+1], data[i*3+2])
		copy(out[i*bypp:], pixel)
	}
	return ServerEvent{Kind: EventRawImage, Rect: rect, Data: out}, nil
}

// paletteFilter implements Tight's palette filter: a small (<=256-entry)
// colour table followed by a 1-bit (2 colours) or 8-bit (otherwise) index
// per pixel, row-major with each row starting on a byte boundary.
func (d *tightDecoder) paletteFilter(r io.Reader, pf PixelFormat, rect Rect, streamID uint8) (ServerEvent, error) {
	b, err := readBytes(r, 1)
	if err != nil {
		return ServerEvent{}, err
	}
	numColors := int(b[0]) + 1
	paletteBytes, err := readBytes(r, numColors*3)
	if err != nil {
		return ServerEvent{}, err
	}
	bypp := pf.bytesPerPixel()
	palette := make([][]byte, numColors)
	for i := 0; i < numColors; i++ {
		palette[i] = pf.EncodeRGB(paletteBytes[i*3], paletteBytes[i*3+1], paletteBytes[i*3+2])
	}

	indexBits := 8
	if numColors == 2 {
		indexBits = 1
	}
	w, h := int(rect.Width), int(rect.Height)
	rowBytes := (w*indexBits + 7) / 8
	data, err := d.readTightData(r, streamID, rowBytes*h)
	if err != nil {
		return ServerEvent{}, err
	}

	out := make([]byte, rect.Area()*bypp)
	if indexBits == 1 {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				byteVal := data[y*rowBytes+x/8]
				idx := (byteVal >> uint(7-x%8)) & 0x1
				off := (y*w + x) * bypp
				copy(out[off:], palette[idx])
			}
		}
	} else {
		for i := 0; i < w*h; i++ {
			copy(out[i*bypp:], palette[data[i]])
		}
	}
	return ServerEvent{Kind: EventRawImage, Rect: rect, Data: out}, nil
}

// gradientFilter predicts each channel from its left and upper neighbours,
// clips the prediction to the channel's range, and adds the wire residual
// modulo that range — a simple lossless image predictor.
func (d *tightDecoder) gradientFilter(r io.Reader, pf PixelFormat, rect Rect, streamID uint8) (ServerEvent, error) {
	w, h := int(rect.Width), int(rect.Height)
	n := w * h * 3
	data, err := d.readTightData(r, streamID, n)
	if err != nil {
		return ServerEvent{}, err
	}
	bypp := pf.bytesPerPixel()
	out := make([]byte, rect.Area()*bypp)
	chanMax := [3]int32{int32(pf.RedMax), int32(pf.GreenMax), int32(pf.BlueMax)}

	prevRow := make([][3]int32, w+1)
	thisRow := make([][3]int32, w+1)
	for y := 0; y < h; y++ {
		for c := 0; c < 3; c++ {
			thisRow[0][c] = 0
		}
		for x := 1; x <= w; x++ {
			raw := data[(y*w+x-1)*3 : (y*w+x-1)*3+3]
			var px [3]uint32
			for c := 0; c < 3; c++ {
				pred := prevRow[x][c] + thisRow[x-1][c] - prevRow[x-1][c]
				if pred < 0 {
					pred = 0
				} else if pred > chanMax[c] {
					pred = chanMax[c]
				}
				v := (uint32(pred) + uint32(raw[c])) & uint32(chanMax[c])
				px[c] = v
				thisRow[x][c] = int32(v)
			}
			pixel := pf.encodeChannels(px[0], px[1], px[2])
			off := (y*w + x - 1) * bypp
			copy(out[off:], pixel)
		}
		prevRow, thisRow = thisRow, prevRow
	}
	return ServerEvent{Kind: EventRawImage, Rect: rect, Data: out}, nil
}
