package govnc

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestDecodeRawReadsExactByteCount(t *testing.T) {
	g := NewWithT(t)
	data := []byte{0xFF, 0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF}
	ev, err := decodeRaw(bytes.NewReader(data), BGRA, Rect{Width: 2, Height: 1})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev.Kind).To(Equal(EventRawImage))
	g.Expect(ev.Data).To(Equal(data))
}

// TestCopyRectScenario is spec scenario 3.
func TestCopyRectScenario(t *testing.T) {
	g := NewWithT(t)
	input := bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x00}) // src x=0,y=0
	ev, err := decodeCopyRect(input, Rect{X: 5, Y: 5, Width: 3, Height: 3})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ev.Kind).To(Equal(EventCopy))
	g.Expect(ev.Dst).To(Equal(Rect{X: 5, Y: 5, Width: 3, Height: 3}))
	g.Expect(ev.Src).To(Equal(Rect{X: 0, Y: 0, Width: 3, Height: 3}))
}
