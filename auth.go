package govnc

import (
	"context"
	"crypto/des"
)

// SecurityType is the 8-bit RFB security type identifier (RFC 6143 §7.2.1).
type SecurityType uint8

const (
	SecurityInvalid SecurityType = 0
	SecurityNone    SecurityType = 1
	SecurityVNCAuth SecurityType = 2
)

// recognisedSecurityTypes are security types this package knows the *name*
// of but does not implement a handshake for (Tight, Ultra, TLS, VeNCrypt
// and friends). They are distinguished from genuinely unknown bytes only so
// that InvalidSecurityTypeError is reserved for values RFB has never
// assigned meaning to.
var recognisedSecurityTypes = map[SecurityType]bool{
	5: true, 6: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
}

func securityTypeKnown(t SecurityType) bool {
	switch t {
	case SecurityInvalid, SecurityNone, SecurityVNCAuth:
		return true
	}
	return recognisedSecurityTypes[t]
}

// AuthProvider supplies a VNC-Auth password lazily: it is only invoked if
// the negotiated security type is SecurityVNCAuth.
type AuthProvider func(ctx context.Context) (string, error)

// vncAuthKey builds the DES key VNC-Auth uses: the first 8 bytes of the
// password (0-padded, truncated if longer), with every byte bit-reversed.
// This reversal has no basis in the RFB RFC text; it is a VNC-specific
// quirk every client and server must reproduce bit for bit.
func vncAuthKey(password string) []byte {
	key := make([]byte, 8)
	copy(key, password)
	for i := range key {
		b := key[i]
		b = (b&0x55)<<1 | (b&0xAA)>>1
		b = (b&0x33)<<2 | (b&0xCC)>>2
		b = (b&0x0F)<<4 | (b&0xF0)>>4
		key[i] = b
	}
	return key
}

// vncAuthResponse encrypts a 16-byte challenge as two independent 8-byte
// DES-ECB blocks keyed by vncAuthKey(password).
func vncAuthResponse(password string, challenge []byte) ([]byte, error) {
	cipher, err := des.NewCipher(vncAuthKey(password))
	if err != nil {
		return nil, GeneralError{Msg: err.Error()}
	}
	response := make([]byte, 16)
	cipher.Encrypt(response[0:8], challenge[0:8])
	cipher.Encrypt(response[8:16], challenge[8:16])
	return response, nil
}
