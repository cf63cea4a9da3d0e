package govnc

import (
	"io"

	"github.com/hsujv/govnc/internal/zlibstream"
)

const tileSize = 64

// zrleDecoder owns the single persistent zlib stream a session's ZRLE
// rectangles share, framed per-rectangle by a u32 length prefix.
type zrleDecoder struct {
	stream zlibstream.Stream
}

// decode reads one ZRLE rectangle and emits one RawImage ServerEvent per
// 64x64 tile (clipped at the rectangle's right/bottom edge), each carrying
// its own absolute rect -- a ZRLE rectangle is a grid of independently
// addressable tiles on the wire, not one combined image.
func (d *zrleDecoder) decode(r io.Reader, pf PixelFormat, rect Rect) ([]ServerEvent, error) {
	var length uint32
	if err := readBE(r, &length); err != nil {
		return nil, err
	}
	compact, err := readBytes(r, int(length))
	if err != nil {
		return nil, err
	}
	if err := d.stream.Open(compact); err != nil {
		return nil, InvalidImageDataError{Msg: err.Error()}
	}

	bypp := pf.bytesPerPixel()
	var events []ServerEvent
	for ty := 0; ty < int(rect.Height); ty += tileSize {
		th := minInt(tileSize, int(rect.Height)-ty)
		for tx := 0; tx < int(rect.Width); tx += tileSize {
			tw := minInt(tileSize, int(rect.Width)-tx)
			tile := make([]byte, tw*th*bypp)
			if err := decodeRLETile(&d.stream, pf, tile, tw, 0, 0, tw, th); err != nil {
				return nil, err
			}
			events = append(events, ServerEvent{
				Kind: EventRawImage,
				Rect: Rect{
					X:      rect.X + uint16(tx),
					Y:      rect.Y + uint16(ty),
					Width:  uint16(tw),
					Height: uint16(th),
				},
				Data: tile,
			})
		}
	}
	if err := d.stream.Finish(); err != nil {
		return nil, InvalidImageDataError{Msg: err.Error()}
	}
	return events, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// decodeRLETile decodes one ZRLE/TRLE tile (at most 64x64, or the whole
// rectangle for TRLE) from r into out, a rect.Area()*bypp-sized buffer
// addressed in full rowWidth-wide rows with (tx,ty) as the tile's origin.
//
// Control byte: bit 7 = RLE flag, bits 0-6 = palette size. Palette entries
// (if any) are compressedBPP()-sized pixels read before the index/run data.
func decodeRLETile(r io.Reader, pf PixelFormat, out []byte, rowWidth, tx, ty, tw, th int) error {
	bypp := pf.bytesPerPixel()
	cbpp := pf.compressedBPP()

	ctrlByte, err := readBytes(r, 1)
	if err != nil {
		return err
	}
	ctrl := ctrlByte[0]
	rle := ctrl&0x80 != 0
	paletteSize := int(ctrl & 0x7f)

	put := func(x, y int, pixel []byte) {
		off := ((ty+y)*rowWidth + (tx + x)) * bypp
		copy(out[off:off+bypp], pixel)
	}

	switch {
	case !rle && paletteSize == 0:
		for y := 0; y < th; y++ {
			for x := 0; x < tw; x++ {
				px, err := readBytes(r, cbpp)
				if err != nil {
					return err
				}
				put(x, y, pf.expandCompressedPixel(px))
			}
		}

	case !rle && paletteSize == 1:
		px, err := readBytes(r, cbpp)
		if err != nil {
			return err
		}
		solid := pf.expandCompressedPixel(px)
		for y := 0; y < th; y++ {
			for x := 0; x < tw; x++ {
				put(x, y, solid)
			}
		}

	case !rle && paletteSize >= 2 && paletteSize <= 16:
		palette, err := readRLEPalette(r, pf, cbpp, paletteSize)
		if err != nil {
			return err
		}
		bits := packedIndexBits(paletteSize)
		rowBytes := (tw*bits + 7) / 8
		for y := 0; y < th; y++ {
			row, err := readBytes(r, rowBytes)
			if err != nil {
				return err
			}
			for x := 0; x < tw; x++ {
				idx := extractPackedIndex(row, x, bits)
				if int(idx) >= paletteSize {
					return InvalidImageDataError{Msg: "packed palette index out of range"}
				}
				put(x, y, palette[idx])
			}
		}

	case rle && paletteSize == 0:
		total := tw * th
		for i := 0; i < total; {
			px, err := readBytes(r, cbpp)
			if err != nil {
				return err
			}
			run, err := readRunLength(r)
			if err != nil {
				return err
			}
			pixel := pf.expandCompressedPixel(px)
			for k := 0; k < run && i < total; k++ {
				put(i%tw, i/tw, pixel)
				i++
			}
		}

	case rle && paletteSize >= 2 && paletteSize <= 127:
		palette, err := readRLEPalette(r, pf, cbpp, paletteSize)
		if err != nil {
			return err
		}
		total := tw * th
		for i := 0; i < total; {
			cb, err := readBytes(r, 1)
			if err != nil {
				return err
			}
			runFlag := cb[0]&0x80 != 0
			idx := int(cb[0] & 0x7f)
			if idx >= paletteSize {
				return InvalidImageDataError{Msg: "palette RLE index out of range"}
			}
			run := 1
			if runFlag {
				run, err = readRunLength(r)
				if err != nil {
					return err
				}
			}
			for k := 0; k < run && i < total; k++ {
				put(i%tw, i/tw, palette[idx])
				i++
			}
		}

	default:
		return InvalidImageDataError{Msg: "invalid ZRLE/TRLE tile control byte"}
	}
	return nil
}

func readRLEPalette(r io.Reader, pf PixelFormat, cbpp, size int) ([][]byte, error) {
	palette := make([][]byte, size)
	for i := range palette {
		px, err := readBytes(r, cbpp)
		if err != nil {
			return nil, err
		}
		palette[i] = pf.expandCompressedPixel(px)
	}
	return palette, nil
}

// packedIndexBits is ZRLE's bits-per-index rule for packed-palette tiles:
// 1 bit for 2 colours, 2 bits for 3-4, 4 bits for 5-16.
func packedIndexBits(numColors int) int {
	switch {
	case numColors <= 2:
		return 1
	case numColors <= 4:
		return 2
	default:
		return 4
	}
}

func extractPackedIndex(row []byte, x, bits int) uint8 {
	switch bits {
	case 1:
		b := row[x/8]
		return (b >> uint(7-x%8)) & 0x1
	case 2:
		b := row[x/4]
		shift := uint(6 - (x%4)*2)
		return (b >> shift) & 0x3
	default: // 4
		b := row[x/2]
		shift := uint(4 - (x%2)*4)
		return (b >> shift) & 0xF
	}
}

// readRunLength decodes ZRLE/TRLE's run-length continuation encoding:
// 1 + the sum of all bytes read, including the first one below 255.
func readRunLength(r io.Reader) (int, error) {
	run := 1
	for {
		b, err := readBytes(r, 1)
		if err != nil {
			return 0, err
		}
		run += int(b[0])
		if b[0] < 255 {
			return run, nil
		}
	}
}
