package govnc

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestVersionOrdering(t *testing.T) {
	g := NewWithT(t)
	g.Expect(RFB33 < RFB37).To(BeTrue())
	g.Expect(RFB37 < RFB38).To(BeTrue())
}

func TestParseVersionUnknownBannerIsRFB33(t *testing.T) {
	g := NewWithT(t)
	g.Expect(parseVersion([]byte("RFB 002.000\n"))).To(Equal(RFB33))
	g.Expect(parseVersion([]byte("garbage!!!!\n"))).To(Equal(RFB33))
}

func TestReadVersionClampsToMax(t *testing.T) {
	g := NewWithT(t)
	buf := bytes.NewBufferString("RFB 003.008\n")
	v, err := readVersion(buf, RFB37)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(v).To(Equal(RFB37))
}

func TestReadVersionServerLowerThanMax(t *testing.T) {
	g := NewWithT(t)
	buf := bytes.NewBufferString("RFB 003.003\n")
	v, err := readVersion(buf, RFB38)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(v).To(Equal(RFB33))
}
