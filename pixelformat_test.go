package govnc

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestPixelFormatWireRoundTrip(t *testing.T) {
	g := NewWithT(t)

	cases := []PixelFormat{BGRA, RGBA, {
		BPP: 16, Depth: 16, BigEndian: true, TrueColor: true,
		RedMax: 31, GreenMax: 63, BlueMax: 31,
		RedShift: 11, GreenShift: 5, BlueShift: 0,
	}}

	for _, pf := range cases {
		var buf bytes.Buffer
		g.Expect(writePixelFormat(&buf, pf)).To(Succeed())
		g.Expect(buf.Len()).To(Equal(16))

		got, err := readPixelFormat(&buf)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(got).To(Equal(pf))
	}
}

func TestPixelFormatValidateRejectsOverlap(t *testing.T) {
	g := NewWithT(t)
	bad := PixelFormat{
		BPP: 16, Depth: 16, TrueColor: true,
		RedMax: 31, GreenMax: 31, BlueMax: 31,
		RedShift: 0, GreenShift: 2, BlueShift: 8, // red/green overlap
	}
	g.Expect(bad.Validate()).To(HaveOccurred())
}

func TestPixelFormatValidateRejectsBadBPP(t *testing.T) {
	g := NewWithT(t)
	bad := PixelFormat{BPP: 24}
	g.Expect(bad.Validate()).To(MatchError(ContainSubstring("bits-per-pixel")))
}

// TestEncodeRGBBGRA exercises spec scenario 4 via EncodeRGB directly:
// colour bytes 11 22 33 against BGRA must land as 33 22 11 FF.
func TestEncodeRGBBGRA(t *testing.T) {
	g := NewWithT(t)
	pixel := BGRA.EncodeRGB(0x11, 0x22, 0x33)
	g.Expect(pixel).To(Equal([]byte{0x33, 0x22, 0x11, 0xFF}))
}

func TestEncodeRGBRGBA(t *testing.T) {
	g := NewWithT(t)
	pixel := RGBA.EncodeRGB(0x11, 0x22, 0x33)
	g.Expect(pixel).To(Equal([]byte{0x11, 0x22, 0x33, 0xFF}))
}

func TestAlphaByteIndexNoFreeByteWhenFullyPacked(t *testing.T) {
	g := NewWithT(t)
	pf := PixelFormat{
		BPP: 32, TrueColor: true,
		RedMax: 1023, GreenMax: 1023, BlueMax: 1023,
		RedShift: 0, GreenShift: 10, BlueShift: 20,
	}
	_, ok := pf.alphaByteIndex()
	g.Expect(ok).To(BeFalse())
}

func TestCompressedBPPForBGRA(t *testing.T) {
	g := NewWithT(t)
	g.Expect(BGRA.compressedBPP()).To(Equal(3))

	deep := BGRA
	deep.Depth = 32
	g.Expect(deep.compressedBPP()).To(Equal(4))
}

func TestWithCursorAlpha(t *testing.T) {
	g := NewWithT(t)
	pixel := []byte{0x33, 0x22, 0x11, 0x00}
	BGRA.withCursorAlpha(pixel, true)
	g.Expect(pixel[3]).To(Equal(byte(0xFF)))
	BGRA.withCursorAlpha(pixel, false)
	g.Expect(pixel[3]).To(Equal(byte(0x00)))
}
