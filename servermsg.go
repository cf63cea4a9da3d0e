package govnc

import (
	"io"
	"strings"
)

// Server -> client message type bytes (spec.md §4.3).
const (
	msgFramebufferUpdate  uint8 = 0
	msgSetColorMapEntries uint8 = 1
	msgBell               uint8 = 2
	msgServerCutText      uint8 = 3
)

// decoderSet owns every decoder with session-lifetime persistent state:
// Tight's four zlib streams and ZRLE's one. A set belongs to exactly one
// session and is only ever touched from the reader goroutine.
type decoderSet struct {
	tight tightDecoder
	zrle  zrleDecoder
}

// readServerMessage reads and dispatches exactly one server -> client
// message. A FramebufferUpdate can yield several events (one per
// rectangle); everything else yields at most one.
func (d *decoderSet) readServerMessage(r io.Reader, pf PixelFormat) ([]ServerEvent, error) {
	msgType, err := readBytes(r, 1)
	if err != nil {
		return nil, err
	}
	switch msgType[0] {
	case msgFramebufferUpdate:
		return d.readFramebufferUpdate(r, pf)
	case msgSetColorMapEntries:
		return nil, WrongServerMessageError{ID: msgSetColorMapEntries}
	case msgBell:
		return []ServerEvent{{Kind: EventBell}}, nil
	case msgServerCutText:
		text, err := readServerCutText(r)
		if err != nil {
			return nil, err
		}
		return []ServerEvent{{Kind: EventText, Text: text}}, nil
	default:
		return nil, WrongServerMessageError{ID: msgType[0]}
	}
}

func readServerCutText(r io.Reader) (string, error) {
	if _, err := readBytes(r, 3); err != nil {
		return "", err
	}
	var n uint32
	if err := readBE(r, &n); err != nil {
		return "", err
	}
	data, err := readBytes(r, int(n))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

func (d *decoderSet) readFramebufferUpdate(r io.Reader, pf PixelFormat) ([]ServerEvent, error) {
	if _, err := readBytes(r, 1); err != nil { // padding
		return nil, err
	}
	var count uint16
	if err := readBE(r, &count); err != nil {
		return nil, err
	}

	events := make([]ServerEvent, 0, count)
	for i := 0; i < int(count); i++ {
		var x, y, w, h uint16
		var tag int32
		if err := readBE(r, &x); err != nil {
			return nil, err
		}
		if err := readBE(r, &y); err != nil {
			return nil, err
		}
		if err := readBE(r, &w); err != nil {
			return nil, err
		}
		if err := readBE(r, &h); err != nil {
			return nil, err
		}
		if err := readBE(r, &tag); err != nil {
			return nil, err
		}
		enc := Encoding(tag)
		if enc == EncodingLastRect {
			break
		}
		rect := Rect{X: x, Y: y, Width: w, Height: h}

		evs, err := d.decodeRect(r, pf, rect, enc)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}
	return events, nil
}

// decodeRect dispatches one encoded rectangle to its decoder. Every
// encoding yields exactly one ServerEvent except ZRLE, which is a grid of
// independently tiled sub-images and yields one event per tile.
func (d *decoderSet) decodeRect(r io.Reader, pf PixelFormat, rect Rect, enc Encoding) ([]ServerEvent, error) {
	switch enc {
	case EncodingRaw:
		return single(decodeRaw(r, pf, rect))
	case EncodingCopyRect:
		return single(decodeCopyRect(r, rect))
	case EncodingTight:
		return single(d.tight.decode(r, pf, rect))
	case EncodingZRLE:
		return d.zrle.decode(r, pf, rect)
	case EncodingTRLE:
		return single(decodeTRLE(r, pf, rect))
	case EncodingCursor:
		return single(decodeCursor(r, pf, rect))
	case EncodingDesktopSize:
		return []ServerEvent{decodeDesktopSize(rect)}, nil
	default:
		return nil, InvalidImageDataError{Msg: "unsupported encoding " + enc.String()}
	}
}

// single adapts a one-event decoder's (ServerEvent, error) return into
// decodeRect's ([]ServerEvent, error) shape.
func single(ev ServerEvent, err error) ([]ServerEvent, error) {
	if err != nil {
		return nil, err
	}
	return []ServerEvent{ev}, nil
}
