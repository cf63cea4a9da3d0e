package govnc

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestTRLESolidFillNoOuterFraming(t *testing.T) {
	g := NewWithT(t)
	// ctrl=1 (palette=1, no RLE) + one compressed pixel, no length prefix
	// and no zlib framing: TRLE is TRLE not sub-tiled.
	input := bytes.NewReader([]byte{0x01, 0x00, 0x00, 0xFF})
	ev, err := decodeTRLE(input, BGRA, Rect{Width: 4, Height: 4})
	g.Expect(err).NotTo(HaveOccurred())
	want := bytes.Repeat([]byte{0xFF, 0x00, 0x00, 0xFF}, 16)
	g.Expect(ev.Data).To(Equal(want))
}

func TestTRLEPlainRLE(t *testing.T) {
	g := NewWithT(t)
	// ctrl=0x80 (RLE, palette=0): pixel then run-length bytes.
	// Run 1: pixel black, run-length byte 3 (=> run 4). Run 2: pixel white,
	// run-length byte 3 (=> run 4), filling the remaining 4 of the 2x4=8
	// pixels.
	input := bytes.NewReader([]byte{
		0x80,
		0x00, 0x00, 0x00, 0x03, // black, run 4
		0xFF, 0xFF, 0xFF, 0x03, // white, run 4
	})
	ev, err := decodeTRLE(input, BGRA, Rect{Width: 2, Height: 4})
	g.Expect(err).NotTo(HaveOccurred())
	black := BGRA.EncodeRGB(0, 0, 0)
	white := BGRA.EncodeRGB(0xFF, 0xFF, 0xFF)
	want := append(bytes.Repeat(black, 4), bytes.Repeat(white, 4)...)
	g.Expect(ev.Data).To(Equal(want))
}
