package govnc

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestReadServerMessageBell(t *testing.T) {
	g := NewWithT(t)
	var d decoderSet
	events, err := d.readServerMessage(bytes.NewReader([]byte{msgBell}), BGRA)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(events).To(HaveLen(1))
	g.Expect(events[0].Kind).To(Equal(EventBell))
}

func TestReadServerMessageCutText(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	buf.WriteByte(msgServerCutText)
	buf.Write([]byte{0, 0, 0}) // padding
	g.Expect(writeBE(&buf, uint32(5))).To(Succeed())
	buf.WriteString("hello")

	var d decoderSet
	events, err := d.readServerMessage(&buf, BGRA)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(events[0].Kind).To(Equal(EventText))
	g.Expect(events[0].Text).To(Equal("hello"))
}

func TestReadServerMessageSetColorMapEntriesIsFatal(t *testing.T) {
	g := NewWithT(t)
	var d decoderSet
	_, err := d.readServerMessage(bytes.NewReader([]byte{msgSetColorMapEntries}), BGRA)
	g.Expect(err).To(MatchError(WrongServerMessageError{ID: msgSetColorMapEntries}))
}

func TestFramebufferUpdateLastRectTerminatesEarly(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	buf.WriteByte(msgFramebufferUpdate)
	buf.WriteByte(0) // padding
	g.Expect(writeBE(&buf, uint16(2))).To(Succeed())

	// First rectangle: a raw 1x1 pixel.
	g.Expect(writeBE(&buf, uint16(0))).To(Succeed()) // x
	g.Expect(writeBE(&buf, uint16(0))).To(Succeed()) // y
	g.Expect(writeBE(&buf, uint16(1))).To(Succeed()) // w
	g.Expect(writeBE(&buf, uint16(1))).To(Succeed()) // h
	g.Expect(writeBE(&buf, int32(EncodingRaw))).To(Succeed())
	buf.Write(BGRA.EncodeRGB(1, 2, 3))

	// Second "rectangle" is LastRect: no payload follows, loop must stop
	// before reading a count==2 worth of rectangles.
	g.Expect(writeBE(&buf, uint16(0))).To(Succeed())
	g.Expect(writeBE(&buf, uint16(0))).To(Succeed())
	g.Expect(writeBE(&buf, uint16(0))).To(Succeed())
	g.Expect(writeBE(&buf, uint16(0))).To(Succeed())
	g.Expect(writeBE(&buf, int32(EncodingLastRect))).To(Succeed())

	var d decoderSet
	events, err := d.readServerMessage(&buf, BGRA)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(events).To(HaveLen(1))
	g.Expect(events[0].Kind).To(Equal(EventRawImage))
}
