package govnc

import (
	"context"
)

// handshakeConfig carries everything the handshake state machine needs from
// the Builder, without depending on Builder directly (keeps this file
// testable in isolation with plain values).
type handshakeConfig struct {
	maxVersion  Version
	auth        AuthProvider
	fixedFormat *PixelFormat // nil => adopt server's PixelFormat
	shared      bool
	encodings   []Encoding
}

// serverInfo is what the handshake yields once the session reaches the
// Connected state: everything the session engine needs to start its
// reader/writer goroutines, plus the two initial output events the
// application is owed (SetResolution, and SetPixelFormat when none was
// fixed by the Builder).
type serverInfo struct {
	version     Version
	pixelFormat PixelFormat
	screen      Rect
	name        string
	initial     []ServerEvent
}

// runHandshake drives the three-state machine described in SPEC_FULL.md
// §4.1-4.2: Handshake (version) -> Authenticate (security+credentials) ->
// Connected (ServerInit + initial client messages). Each step either
// advances or returns a typed error; no step is retried.
func runHandshake(ctx context.Context, t Transport, cfg handshakeConfig) (*serverInfo, error) {
	if len(cfg.encodings) == 0 {
		return nil, ErrNoEncoding
	}

	var info *serverInfo
	err := withCancel(ctx, t, func() error {
		version, err := negotiateVersion(t, cfg.maxVersion)
		if err != nil {
			return err
		}

		secType, err := negotiateSecurity(t, version)
		if err != nil {
			return err
		}

		if err := performAuth(t, secType, cfg.auth); err != nil {
			return err
		}

		if err := awaitSecurityResult(t, version, secType); err != nil {
			return err
		}

		info, err = initSession(t, version, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// negotiateVersion is the Handshake state: read the server's banner, write
// back the negotiated min(ours, theirs) banner.
func negotiateVersion(t Transport, max Version) (Version, error) {
	version, err := readVersion(t, max)
	if err != nil {
		return 0, err
	}
	if _, err := t.Write(version.banner()); err != nil {
		return 0, IoError{Err: err}
	}
	return version, nil
}

// negotiateSecurity is the start of the Authenticate state: pick a
// security type per spec.md §4.1, writing the client's choice back for
// RFB37/RFB38.
func negotiateSecurity(t Transport, version Version) (SecurityType, error) {
	if version == RFB33 {
		var raw uint32
		if err := readBE(t, &raw); err != nil {
			return 0, err
		}
		if raw == 0 {
			reason, err := readErrorReason(t)
			if err != nil {
				return 0, err
			}
			return 0, GeneralError{Msg: reason}
		}
		secType := SecurityType(raw)
		if !securityTypeKnown(secType) {
			return 0, InvalidSecurityTypeError{Type: uint8(secType)}
		}
		return secType, nil
	}

	var count uint8
	if err := readBE(t, &count); err != nil {
		return 0, err
	}
	if count == 0 {
		reason, err := readErrorReason(t)
		if err != nil {
			return 0, err
		}
		return 0, GeneralError{Msg: reason}
	}
	offered, err := readBytes(t, int(count))
	if err != nil {
		return 0, err
	}

	chosen, ok := pickSecurityType(offered)
	if !ok {
		return 0, GeneralError{Msg: "security type not implemented"}
	}
	if _, err := t.Write([]byte{byte(chosen)}); err != nil {
		return 0, IoError{Err: err}
	}
	return chosen, nil
}

// pickSecurityType selects None if offered, else VncAuth if offered.
func pickSecurityType(offered []byte) (SecurityType, bool) {
	hasNone, hasVNC := false, false
	for _, b := range offered {
		switch SecurityType(b) {
		case SecurityNone:
			hasNone = true
		case SecurityVNCAuth:
			hasVNC = true
		}
	}
	switch {
	case hasNone:
		return SecurityNone, true
	case hasVNC:
		return SecurityVNCAuth, true
	default:
		return 0, false
	}
}

// performAuth runs the chosen security type's credential exchange.
func performAuth(t Transport, secType SecurityType, auth AuthProvider) error {
	switch secType {
	case SecurityNone:
		return nil
	case SecurityVNCAuth:
		if auth == nil {
			return ErrNoPassword
		}
		challenge, err := readBytes(t, 16)
		if err != nil {
			return err
		}
		password, err := auth(context.Background())
		if err != nil {
			return GeneralError{Msg: err.Error()}
		}
		response, err := vncAuthResponse(password, challenge)
		if err != nil {
			return err
		}
		if _, err := t.Write(response); err != nil {
			return IoError{Err: err}
		}
		return nil
	default:
		return GeneralError{Msg: "security type not implemented"}
	}
}

// awaitSecurityResult implements the per-version/per-security-type
// SecurityResult rules of spec.md §4.1. None on RFB33/RFB37 has no
// SecurityResult message at all; every other combination reads a 4-byte
// result, and a non-zero result carries a length-prefixed reason string
// except for VncAuth on RFB37, which gives none.
func awaitSecurityResult(t Transport, version Version, secType SecurityType) error {
	if secType == SecurityNone && version != RFB38 {
		return nil
	}

	var result uint32
	if err := readBE(t, &result); err != nil {
		return err
	}
	if result == 0 {
		return nil
	}

	if secType == SecurityVNCAuth && version == RFB37 {
		return ErrWrongPassword
	}

	reason, err := readErrorReason(t)
	if err != nil {
		return err
	}
	return GeneralError{Msg: reason}
}

// initSession is the Connected state: ClientInit/ServerInit exchange,
// followed by the client's initial SetPixelFormat/SetEncodings/
// FramebufferUpdateRequest per spec.md §4.2.
func initSession(t Transport, version Version, cfg handshakeConfig) (*serverInfo, error) {
	shared := uint8(0)
	if cfg.shared {
		shared = 1
	}
	if err := writeBE(t, shared); err != nil {
		return nil, err
	}

	var width, height uint16
	if err := readBE(t, &width); err != nil {
		return nil, err
	}
	if err := readBE(t, &height); err != nil {
		return nil, err
	}
	serverPF, err := readPixelFormat(t)
	if err != nil {
		return nil, err
	}
	var nameLen uint32
	if err := readBE(t, &nameLen); err != nil {
		return nil, err
	}
	nameBytes, err := readBytes(t, int(nameLen))
	if err != nil {
		return nil, err
	}

	screen := Rect{Width: width, Height: height}
	info := &serverInfo{
		version: version,
		screen:  screen,
		name:    string(nameBytes),
	}
	info.initial = append(info.initial, ServerEvent{Kind: EventSetResolution, Width: width, Height: height})

	if cfg.fixedFormat != nil {
		info.pixelFormat = *cfg.fixedFormat
		if err := sendSetPixelFormat(t, *cfg.fixedFormat); err != nil {
			return nil, err
		}
	} else {
		info.pixelFormat = serverPF
		info.initial = append(info.initial, ServerEvent{Kind: EventSetPixelFormat, PixelFormat: serverPF})
	}

	if err := sendSetEncodings(t, cfg.encodings); err != nil {
		return nil, err
	}

	if err := sendFramebufferUpdateRequest(t, false, screen); err != nil {
		return nil, err
	}

	return info, nil
}
