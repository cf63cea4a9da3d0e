package govnc

import (
	"encoding/binary"
	"io"
)

// PixelFormat is the 16-byte, bit-exact RFB pixel format descriptor
// (RFC 6143 §7.4). It both arrives on the wire (ServerInit, SetPixelFormat)
// and is written back by the client.
type PixelFormat struct {
	BPP       uint8 // bits per pixel: 8, 16 or 32
	Depth     uint8
	BigEndian bool
	TrueColor bool

	RedMax, GreenMax, BlueMax       uint16
	RedShift, GreenShift, BlueShift uint8
}

// BGRA is the convenience format most Tight/ZRLE/TRLE servers default to:
// 32bpp, depth 24, little-endian, with blue in the lowest byte.
var BGRA = PixelFormat{
	BPP: 32, Depth: 24, BigEndian: false, TrueColor: true,
	RedMax: 255, GreenMax: 255, BlueMax: 255,
	RedShift: 16, GreenShift: 8, BlueShift: 0,
}

// RGBA is BGRA's mirror image: red occupies the lowest byte.
var RGBA = PixelFormat{
	BPP: 32, Depth: 24, BigEndian: false, TrueColor: true,
	RedMax: 255, GreenMax: 255, BlueMax: 255,
	RedShift: 0, GreenShift: 8, BlueShift: 16,
}

// wirePixelFormat is the exact 16-byte RFB on-wire encoding, used only for marshalling.
type wirePixelFormat struct {
	BPP        uint8
	Depth      uint8
	BigEndian  uint8
	TrueColor  uint8
	RedMax     uint16
	GreenMax   uint16
	BlueMax    uint16
	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
	_          [3]byte
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (pf PixelFormat) toWire() wirePixelFormat {
	return wirePixelFormat{
		BPP:        pf.BPP,
		Depth:      pf.Depth,
		BigEndian:  boolToByte(pf.BigEndian),
		TrueColor:  boolToByte(pf.TrueColor),
		RedMax:     pf.RedMax,
		GreenMax:   pf.GreenMax,
		BlueMax:    pf.BlueMax,
		RedShift:   pf.RedShift,
		GreenShift: pf.GreenShift,
		BlueShift:  pf.BlueShift,
	}
}

func fromWire(w wirePixelFormat) PixelFormat {
	return PixelFormat{
		BPP:        w.BPP,
		Depth:      w.Depth,
		BigEndian:  w.BigEndian != 0,
		TrueColor:  w.TrueColor != 0,
		RedMax:     w.RedMax,
		GreenMax:   w.GreenMax,
		BlueMax:    w.BlueMax,
		RedShift:   w.RedShift,
		GreenShift: w.GreenShift,
		BlueShift:  w.BlueShift,
	}
}

// Validate checks the non-overlap invariant: the three channel spans
// described by (max, shift) must not overlap within BPP bits, and BPP must
// be one of the three values RFB allows.
func (pf PixelFormat) Validate() error {
	switch pf.BPP {
	case 8, 16, 32:
	default:
		return WrongPixelFormatError{Msg: "bits-per-pixel must be 8, 16 or 32"}
	}
	if !pf.TrueColor {
		return nil
	}
	limit := uint32(1) << pf.BPP
	if pf.BPP == 32 {
		limit = 0 // avoid overflow; treated as unbounded below
	}
	red := uint64(pf.RedMax) << pf.RedShift
	green := uint64(pf.GreenMax) << pf.GreenShift
	blue := uint64(pf.BlueMax) << pf.BlueShift
	if red&green != 0 || red&blue != 0 || green&blue != 0 {
		return WrongPixelFormatError{Msg: "channel masks overlap"}
	}
	if limit != 0 {
		max := uint64(limit) - 1
		if red > max || green > max || blue > max {
			return WrongPixelFormatError{Msg: "channel mask exceeds bits-per-pixel"}
		}
	}
	return nil
}

func readPixelFormat(r io.Reader) (PixelFormat, error) {
	var w wirePixelFormat
	if err := binary.Read(r, binary.BigEndian, &w); err != nil {
		return PixelFormat{}, IoError{Err: err}
	}
	pf := fromWire(w)
	if err := pf.Validate(); err != nil {
		return PixelFormat{}, err
	}
	return pf, nil
}

func writePixelFormat(w io.Writer, pf PixelFormat) error {
	if err := binary.Write(w, binary.BigEndian, pf.toWire()); err != nil {
		return IoError{Err: err}
	}
	return nil
}

// bytesPerPixel returns BPP/8.
func (pf PixelFormat) bytesPerPixel() int {
	return int(pf.BPP) / 8
}

func (pf PixelFormat) channelMask() uint32 {
	return uint32(pf.RedMax)<<pf.RedShift | uint32(pf.GreenMax)<<pf.GreenShift | uint32(pf.BlueMax)<<pf.BlueShift
}

// alphaByteIndex reports the wire-byte position (0-indexed, in the order
// the pixel is actually written to the wire given pf.BigEndian) of the
// single byte left unclaimed by the red/green/blue channel masks, if any.
// Only 32bpp formats can have one: it's how BGRA/RGBA reserve a byte this
// package uses to carry a synthetic alpha channel for fills and cursors,
// since RFB's own PixelFormat has no alpha concept.
func (pf PixelFormat) alphaByteIndex() (int, bool) {
	if pf.BPP != 32 || !pf.TrueColor {
		return 0, false
	}
	free := ^pf.channelMask()
	var bitPos uint
	switch free {
	case 0x000000FF:
		bitPos = 0
	case 0x0000FF00:
		bitPos = 8
	case 0x00FF0000:
		bitPos = 16
	case 0xFF000000:
		bitPos = 24
	default:
		return 0, false
	}
	byteFromLSB := int(bitPos / 8)
	if pf.BigEndian {
		return 3 - byteFromLSB, true
	}
	return byteFromLSB, true
}

// compressedBPP implements the ZRLE/TRLE "compressed bpp" rule: 3 bytes per
// pixel instead of 4 when the format is 32bpp/depth<=24/true-colour and one
// channel-mask byte is spare (used to carry our synthetic alpha).
func (pf PixelFormat) compressedBPP() int {
	if pf.BPP == 32 && pf.TrueColor && pf.Depth <= 24 {
		if _, ok := pf.alphaByteIndex(); ok {
			return 3
		}
	}
	return pf.bytesPerPixel()
}

func scaleChannel(c uint8, max uint16) uint32 {
	return (uint32(c)*uint32(max) + 127) / 255
}

func (pf PixelFormat) putUint(buf []byte, v uint32) {
	order := binary.ByteOrder(binary.LittleEndian)
	if pf.BigEndian {
		order = binary.BigEndian
	}
	switch len(buf) {
	case 1:
		buf[0] = byte(v)
	case 2:
		order.PutUint16(buf, uint16(v))
	case 4:
		order.PutUint32(buf, v)
	}
}

// EncodeRGB places an 8-bit (r,g,b) triple into a freshly allocated,
// pf-encoded pixel of pf.bytesPerPixel() bytes. If pf has a spare alpha
// byte (see alphaByteIndex), it is set to 0xFF (opaque) — used by Tight's
// fill/copy/gradient filters and its palette entries, all of which only
// ever carry true-colour RGB triples on the wire.
func (pf PixelFormat) EncodeRGB(r, g, b uint8) []byte {
	buf := make([]byte, pf.bytesPerPixel())
	if !pf.TrueColor {
		return buf
	}
	v := scaleChannel(r, pf.RedMax)<<pf.RedShift | scaleChannel(g, pf.GreenMax)<<pf.GreenShift | scaleChannel(b, pf.BlueMax)<<pf.BlueShift
	pf.putUint(buf, v)
	if idx, ok := pf.alphaByteIndex(); ok {
		buf[idx] = 0xFF
	}
	return buf
}

// encodeChannels places three already max-scaled channel values (each in
// 0..Max for its channel, not 0..255) into a freshly allocated pf-encoded
// pixel. Used only by Tight's gradient filter, whose predictor arithmetic
// operates directly in the negotiated channel range rather than 8-bit RGB.
func (pf PixelFormat) encodeChannels(r, g, b uint32) []byte {
	buf := make([]byte, pf.bytesPerPixel())
	v := r<<pf.RedShift | g<<pf.GreenShift | b<<pf.BlueShift
	pf.putUint(buf, v)
	if idx, ok := pf.alphaByteIndex(); ok {
		buf[idx] = 0xFF
	}
	return buf
}

// expandCompressedPixel turns a ZRLE/TRLE "compressed pixel" (either a full
// pf-encoded pixel, or a 3-byte RGB triple when compressedBPP()==3) into a
// full pf-encoded pixel ready to append to a RawImage payload.
func (pf PixelFormat) expandCompressedPixel(buf []byte) []byte {
	if len(buf) == pf.bytesPerPixel() {
		out := make([]byte, len(buf))
		copy(out, buf)
		return out
	}
	return pf.EncodeRGB(buf[0], buf[1], buf[2])
}

// withCursorAlpha sets the spare alpha byte (if any) of a pf-encoded pixel
// that was read verbatim off the wire (Cursor pseudo-encoding), according
// to the corresponding bitmask bit.
func (pf PixelFormat) withCursorAlpha(pixel []byte, visible bool) []byte {
	idx, ok := pf.alphaByteIndex()
	if !ok {
		return pixel
	}
	if visible {
		pixel[idx] |= 0xFF
	} else {
		pixel[idx] = 0
	}
	return pixel
}
