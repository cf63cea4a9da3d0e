// Package zlibstream wraps compress/zlib's Reader for the persistent,
// incrementally-fed use Tight and ZRLE both need: one inflater per stream
// lives for the session, fed one rectangle's compressed slice at a time,
// never driven to its own end-of-stream by a rectangle boundary.
package zlibstream

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// feeder is a stable io.Reader/io.ByteReader whose backing slice is swapped
// out before each rectangle. The zlib.Reader built on top of it is created
// exactly once and keeps reading from feeder for the life of the Stream, so
// its inflate window and Huffman state carry across rectangle boundaries --
// only the bytes feeder serves change, never the decompressor itself.
// Implementing ReadByte (not just Read) matters: without it compress/zlib
// wraps the source in its own bufio.Reader, which would read ahead past the
// end of the current rectangle's slice and into whatever happens to follow
// it in memory.
type feeder struct {
	cur *bytes.Reader
}

func (f *feeder) Read(p []byte) (int, error) {
	if f.cur == nil {
		return 0, io.EOF
	}
	return f.cur.Read(p)
}

func (f *feeder) ReadByte() (byte, error) {
	if f.cur == nil {
		return 0, io.EOF
	}
	return f.cur.ReadByte()
}

// Stream is a persistent zlib decompressor bound to one bounded input slice
// at a time. Tight owns four of these (one per stream-id); ZRLE owns one.
// Neither is ever shared across goroutines. The decompressor persists
// across calls to Open/Inflate for the Stream's whole lifetime -- per
// SPEC_FULL.md §4.4/§4.5, RFB's zlib streams are continuously flushed
// (Z_SYNC_FLUSH) for the session's duration, not re-initialised per
// rectangle; only an explicit Reset (Tight's per-stream-id control bit)
// tears one down.
type Stream struct {
	zr     io.ReadCloser
	feeder *feeder
}

// Reset discards the in-progress decompressor, so the next Open/Inflate
// call seeds a brand new zlib stream (fresh header, fresh window) from the
// next input slice it's given. Used only where the wire protocol itself
// says so -- Tight's control byte carries an explicit per-stream-id reset
// bit for exactly this purpose.
func (s *Stream) Reset() {
	if s.zr != nil {
		s.zr.Close()
	}
	s.zr = nil
	s.feeder = nil
}

// begin points the stream at a new compressed input slice. The first call
// (or the first call after Reset) creates the underlying zlib reader, which
// consumes the 2-byte zlib header from data; every later call simply swaps
// the slice feeder serves, leaving the live decompressor's window and
// pending bit state untouched.
func (s *Stream) begin(data []byte) error {
	if s.zr == nil {
		s.feeder = &feeder{cur: bytes.NewReader(data)}
		zr, err := zlib.NewReader(s.feeder)
		if err != nil {
			return fmt.Errorf("zlibstream: %w", err)
		}
		s.zr = zr
		return nil
	}
	s.feeder.cur = bytes.NewReader(data)
	return nil
}

// Inflate decompresses exactly n bytes of output from data, the compressed
// bytes of one rectangle (or one Tight chunk). It is an error for the
// input to be left with unconsumed bytes, or for the decompressor to
// report EOF before n bytes have been produced — both are treated as fatal
// malformed-stream conditions by the caller.
func (s *Stream) Inflate(data []byte, n int) ([]byte, error) {
	if err := s.Open(data); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(s, out); err != nil {
		return nil, fmt.Errorf("zlibstream: short inflate: %w", err)
	}
	if err := s.Finish(); err != nil {
		return nil, err
	}
	return out, nil
}

// Open points the stream at a new compressed input slice, for callers
// (ZRLE) that read through it incrementally via Read rather than all at
// once via Inflate, since a ZRLE rectangle's per-tile payload sizes aren't
// known until each tile's control byte is parsed.
func (s *Stream) Open(data []byte) error {
	return s.begin(data)
}

// Read implements io.Reader over the current input slice by forwarding to
// the live zlib decompressor opened by Open or Inflate. Its results are
// passed through unchanged, io.EOF at the end of a zlib stream included;
// a caller that needs a fixed number of bytes (io.ReadFull) sees an early
// end as a short read, and Finish catches leftover input.
func (s *Stream) Read(p []byte) (int, error) {
	return s.zr.Read(p)
}

// Finish confirms the slice passed to the most recent Open/Inflate call was
// consumed exactly; leftover bytes are a fatal malformed-stream condition.
// It checks only that this one slice was fully consumed -- it never drives
// the decompressor itself to end-of-stream, since the stream persists past
// this rectangle.
func (s *Stream) Finish() error {
	if s.feeder.cur.Len() != 0 {
		return fmt.Errorf("zlibstream: %d leftover compressed bytes", s.feeder.cur.Len())
	}
	return nil
}

// BitReader wraps a byte stream with an 8-bit-buffered bit reader for
// packed index rows. The ZRLE/TRLE tile decoder does not use it: it reads
// each byte-aligned row whole and extracts indices itself. Bits are
// consumed most-significant first within each byte, matching RFB's
// big-endian bit order.
type BitReader struct {
	r       *bufio.Reader
	cur     byte
	remain  uint
	started bool
}

// NewBitReader wraps r (typically the output of Stream.Inflate) for
// bit-level reads.
func NewBitReader(r io.Reader) *BitReader {
	return &BitReader{r: bufio.NewReader(r)}
}

// ReadBits reads the next n (<=8) bits, MSB first, refilling from the
// underlying byte stream a full byte at a time.
func (b *BitReader) ReadBits(n uint) (uint8, error) {
	if b.remain == 0 {
		c, err := b.r.ReadByte()
		if err != nil {
			return 0, err
		}
		b.cur = c
		b.remain = 8
	}
	b.remain -= n
	v := (b.cur >> b.remain) & ((1 << n) - 1)
	return v, nil
}

// Align discards any partially consumed byte, so the next ReadBits starts
// on a fresh byte boundary (each ZRLE packed-palette row is byte-aligned).
func (b *BitReader) Align() {
	b.remain = 0
}
