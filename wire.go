package govnc

import (
	"encoding/binary"
	"io"
)

// readBE reads a fixed-size big-endian value into v, which must be a
// pointer to a fixed-size type (or a slice of one), per encoding/binary's
// Read contract. Every RFB scalar is big-endian on the wire.
func readBE(r io.Reader, v any) error {
	if err := binary.Read(r, binary.BigEndian, v); err != nil {
		return IoError{Err: err}
	}
	return nil
}

func writeBE(w io.Writer, v any) error {
	if err := binary.Write(w, binary.BigEndian, v); err != nil {
		return IoError{Err: err}
	}
	return nil
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, IoError{Err: err}
	}
	return buf, nil
}

func readErrorReason(r io.Reader) (string, error) {
	var n uint32
	if err := readBE(r, &n); err != nil {
		return "", err
	}
	buf, err := readBytes(r, int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
