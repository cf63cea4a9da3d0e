package govnc

import "io"

// Client -> server message type bytes (spec.md §4.3).
const (
	msgSetPixelFormat           uint8 = 1
	msgSetEncodings             uint8 = 2
	msgFramebufferUpdateRequest uint8 = 3
	msgKeyEvent                 uint8 = 4
	msgPointerEvent             uint8 = 5
	msgClientCutText            uint8 = 6
)

func sendSetPixelFormat(w io.Writer, pf PixelFormat) error {
	if err := writeBE(w, msgSetPixelFormat); err != nil {
		return err
	}
	if err := writeBE(w, [3]byte{}); err != nil {
		return err
	}
	return writePixelFormat(w, pf)
}

func sendSetEncodings(w io.Writer, encodings []Encoding) error {
	if err := writeBE(w, msgSetEncodings); err != nil {
		return err
	}
	if err := writeBE(w, uint8(0)); err != nil {
		return err
	}
	if err := writeBE(w, uint16(len(encodings))); err != nil {
		return err
	}
	for _, e := range encodings {
		if err := writeBE(w, int32(e)); err != nil {
			return err
		}
	}
	return nil
}

func sendFramebufferUpdateRequest(w io.Writer, incremental bool, r Rect) error {
	if err := writeBE(w, msgFramebufferUpdateRequest); err != nil {
		return err
	}
	inc := uint8(0)
	if incremental {
		inc = 1
	}
	if err := writeBE(w, inc); err != nil {
		return err
	}
	if err := writeBE(w, r.X); err != nil {
		return err
	}
	if err := writeBE(w, r.Y); err != nil {
		return err
	}
	if err := writeBE(w, r.Width); err != nil {
		return err
	}
	return writeBE(w, r.Height)
}

func sendKeyEvent(w io.Writer, keycode uint32, down bool) error {
	if err := writeBE(w, msgKeyEvent); err != nil {
		return err
	}
	d := uint8(0)
	if down {
		d = 1
	}
	if err := writeBE(w, d); err != nil {
		return err
	}
	if err := writeBE(w, [2]byte{}); err != nil {
		return err
	}
	return writeBE(w, keycode)
}

func sendPointerEvent(w io.Writer, x, y uint16, buttonMask uint8) error {
	if err := writeBE(w, msgPointerEvent); err != nil {
		return err
	}
	if err := writeBE(w, buttonMask); err != nil {
		return err
	}
	if err := writeBE(w, x); err != nil {
		return err
	}
	return writeBE(w, y)
}

func sendClientCutText(w io.Writer, text string) error {
	if err := writeBE(w, msgClientCutText); err != nil {
		return err
	}
	if err := writeBE(w, [3]byte{}); err != nil {
		return err
	}
	data := []byte(text)
	if err := writeBE(w, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	if err != nil {
		return IoError{Err: err}
	}
	return nil
}

// sendClientEvent serialises a single ClientEvent, consulting screen for the
// screen-sized FramebufferUpdateRequest Refresh/FullRefresh expand to.
func sendClientEvent(w io.Writer, ev ClientEvent, screen Rect) error {
	switch ev.Kind {
	case ClientRefresh:
		return sendFramebufferUpdateRequest(w, true, screen)
	case ClientFullRefresh:
		return sendFramebufferUpdateRequest(w, false, screen)
	case ClientKeyEvent:
		return sendKeyEvent(w, ev.Keycode, ev.Down)
	case ClientPointerEvent:
		return sendPointerEvent(w, ev.X, ev.Y, ev.ButtonMask)
	case ClientCopyText:
		return sendClientCutText(w, ev.Text)
	default:
		return GeneralError{Msg: "unknown client event kind"}
	}
}
