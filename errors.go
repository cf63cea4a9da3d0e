package govnc

import "fmt"

// Sentinel errors, comparable with errors.Is.
var (
	// ErrNoPassword is returned when the server requires VNC-Auth but the
	// Builder was never given an AuthProvider.
	ErrNoPassword = fmt.Errorf("govnc: security type requires a password but none was configured")

	// ErrNoEncoding is returned by Connect if the Builder was never told
	// about any encoding via AddEncoding.
	ErrNoEncoding = fmt.Errorf("govnc: no encoding configured")

	// ErrWrongPassword is returned when VNC-Auth's SecurityResult says the
	// password was rejected and the server gave no further detail.
	ErrWrongPassword = fmt.Errorf("govnc: server rejected the password")

	// ErrClientNotRunning is returned by Input once the session has been
	// closed, either explicitly or because the transport reported EOF,
	// and by RecvEvent/PollEvent once the events queued before the
	// close have been drained.
	ErrClientNotRunning = fmt.Errorf("govnc: client is not running")
)

// InvalidSecurityTypeError is returned when an RFB33 server dictates a
// security type byte this package doesn't recognise at all. On RFB37/RFB38
// unrecognised bytes in the offered list are skipped by the selection.
type InvalidSecurityTypeError struct {
	Type uint8
}

func (e InvalidSecurityTypeError) Error() string {
	return fmt.Sprintf("govnc: invalid security type %d", e.Type)
}

// GeneralError wraps a server-supplied UTF-8 error string, as sent after a
// failed version/security/auth step.
type GeneralError struct {
	Msg string
}

func (e GeneralError) Error() string {
	return fmt.Sprintf("govnc: %s", e.Msg)
}

// WrongPixelFormatError is returned when a PixelFormat read off the wire
// fails the non-overlapping-channel invariant, or describes a bits-per-pixel
// this package doesn't support (must be 8, 16 or 32).
type WrongPixelFormatError struct {
	Msg string
}

func (e WrongPixelFormatError) Error() string {
	return fmt.Sprintf("govnc: wrong pixel format: %s", e.Msg)
}

// WrongServerMessageError is returned for a server message type this
// package does not implement, notably SetColorMapEntries (colour-map pixel
// formats are a non-goal).
type WrongServerMessageError struct {
	ID uint8
}

func (e WrongServerMessageError) Error() string {
	return fmt.Sprintf("govnc: unsupported server message type %d", e.ID)
}

// InvalidImageDataError covers malformed rectangle payloads: bad compact
// lengths, zlib streams that don't exactly consume their input, channel
// masks that don't match one of the four canonical alpha-placement
// patterns, and similar decode-time invariant violations.
type InvalidImageDataError struct {
	Msg string
}

func (e InvalidImageDataError) Error() string {
	return fmt.Sprintf("govnc: invalid image data: %s", e.Msg)
}

// IoError wraps a transport-level error (anything other than io.EOF, which
// is handled as a clean shutdown rather than surfaced as an error value).
type IoError struct {
	Err error
}

func (e IoError) Error() string {
	return fmt.Sprintf("govnc: transport error: %s", e.Err)
}

func (e IoError) Unwrap() error {
	return e.Err
}
