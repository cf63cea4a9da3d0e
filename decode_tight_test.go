package govnc

import (
	"bytes"
	"compress/zlib"
	"testing"

	. "github.com/onsi/gomega"
)

// TestTightFillScenario is spec scenario 4, decoded through the full
// Tight control-byte dispatch rather than EncodeRGB directly.
func TestTightFillScenario(t *testing.T) {
	g := NewWithT(t)
	input := bytes.NewReader([]byte{0x80, 0x11, 0x22, 0x33})
	var d tightDecoder

	ev, err := d.decode(input, BGRA, Rect{Width: 2, Height: 2})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev.Kind).To(Equal(EventRawImage))

	pixel := []byte{0x33, 0x22, 0x11, 0xFF}
	want := bytes.Repeat(pixel, 4)
	g.Expect(ev.Data).To(Equal(want))
}

func TestTightCopyFilterBelowThreshold(t *testing.T) {
	g := NewWithT(t)
	// ctrl nibble 0 (basic, filter absent -> copy, stream 0), 2x1 rect => 6
	// uncompressed bytes, below the 12-byte zlib threshold: read raw.
	input := bytes.NewReader([]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66})
	var d tightDecoder

	ev, err := d.decode(input, BGRA, Rect{Width: 2, Height: 1})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev.Data).To(Equal(append(
		BGRA.EncodeRGB(0x11, 0x22, 0x33),
		BGRA.EncodeRGB(0x44, 0x55, 0x66)...,
	)))
}

func TestTightPaletteFilterMono(t *testing.T) {
	g := NewWithT(t)
	// ctrl = 0x10: basic, no filter byte (bit 0x4 clear) -> copy... need
	// filter byte present to select palette, so set bit 0x4: nibble=0x4.
	ctrl := byte(0x40)
	filter := byte(1) // palette
	numColorsMinus1 := byte(1) // 2 colours -> 1-bit index
	palette := []byte{0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF}
	// 3x1 rect, 1 bit/pixel, row byte-aligned: indices 1,0,1 -> 0b101_____
	indexByte := byte(0b10100000)
	input := bytes.NewReader(append([]byte{ctrl, filter, numColorsMinus1}, append(palette, indexByte)...))

	var d tightDecoder
	ev, err := d.decode(input, BGRA, Rect{Width: 3, Height: 1})
	g.Expect(err).NotTo(HaveOccurred())

	white := BGRA.EncodeRGB(0xFF, 0xFF, 0xFF)
	black := BGRA.EncodeRGB(0x00, 0x00, 0x00)
	g.Expect(ev.Data).To(Equal(append(append(append([]byte{}, white...), black...), white...)))
}

func TestTightJPEGPassesThroughOpaqueBlob(t *testing.T) {
	g := NewWithT(t)
	blob := []byte{0xFF, 0xD8, 0xFF, 0xAA}
	input := bytes.NewReader(append([]byte{0x90, byte(len(blob))}, blob...))
	var d tightDecoder

	ev, err := d.decode(input, BGRA, Rect{Width: 4, Height: 4})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev.Kind).To(Equal(EventJpegImage))
	g.Expect(ev.Data).To(Equal(blob))
}

func TestTightPNGIsRejected(t *testing.T) {
	g := NewWithT(t)
	input := bytes.NewReader([]byte{0xA0})
	var d tightDecoder
	_, err := d.decode(input, BGRA, Rect{Width: 1, Height: 1})
	g.Expect(err).To(HaveOccurred())
}

func rgbPixels(pf PixelFormat, triples [][3]byte) []byte {
	var out []byte
	for _, c := range triples {
		out = append(out, pf.EncodeRGB(c[0], c[1], c[2])...)
	}
	return out
}

// TestTightStreamPersistsAcrossRectangles is the regression case for Tight's
// per-stream-id zlib persistence: two rectangles on the same stream-id, with
// no reset bit set between them, are Z_SYNC_FLUSH-ed chunks of one
// continuing zlib stream -- only the first carries a zlib header. A decoder
// that re-initialises the stream per rectangle (rather than feeding the
// same live decompressor) would fail to decode the second chunk.
func TestTightStreamPersistsAcrossRectangles(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)

	chunk := func(data []byte) []byte {
		before := buf.Len()
		_, err := w.Write(data)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(w.Flush()).To(Succeed())
		out := make([]byte, buf.Len()-before)
		copy(out, buf.Bytes()[before:])
		return out
	}

	colors1 := [][3]byte{{0x01, 0x02, 0x03}, {0x04, 0x05, 0x06}, {0x07, 0x08, 0x09}, {0x0A, 0x0B, 0x0C}}
	colors2 := [][3]byte{{0x10, 0x20, 0x30}, {0x40, 0x50, 0x60}, {0x70, 0x80, 0x90}, {0xA0, 0xB0, 0xC0}}
	var payload1, payload2 []byte
	for _, c := range colors1 {
		payload1 = append(payload1, c[:]...)
	}
	for _, c := range colors2 {
		payload2 = append(payload2, c[:]...)
	}

	compact1 := chunk(payload1)
	compact2 := chunk(payload2)
	g.Expect(len(compact1)).To(BeNumerically("<", 128))
	g.Expect(len(compact2)).To(BeNumerically("<", 128))

	rect := func(compact []byte) []byte {
		// ctrl=0x00: basic mode, stream 0, no filter byte (copy), no reset.
		return append([]byte{0x00, byte(len(compact))}, compact...)
	}

	var d tightDecoder
	ev1, err := d.decode(bytes.NewReader(rect(compact1)), BGRA, Rect{Width: 4, Height: 1})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev1.Data).To(Equal(rgbPixels(BGRA, colors1)))

	ev2, err := d.decode(bytes.NewReader(rect(compact2)), BGRA, Rect{Width: 4, Height: 1})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev2.Data).To(Equal(rgbPixels(BGRA, colors2)))
}

func TestReadCompactLength(t *testing.T) {
	g := NewWithT(t)

	single := bytes.NewReader([]byte{0x05})
	n, err := readCompactLength(single)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(n).To(Equal(5))

	two := bytes.NewReader([]byte{0x80, 0x01}) // 0 | 1<<7 = 128
	n, err = readCompactLength(two)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(n).To(Equal(128))
}
