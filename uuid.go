package gatt

import (
	"encoding/hex"
	"fmt"
)

// bleBaseUUIDSuffix is the last 12 bytes (big-endian, as written) of the
// 128-bit Bluetooth base UUID, following its 32-bit prefix.
var bleBaseUUIDSuffix = []byte{0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0x80, 0x5F, 0x9B, 0x34, 0xFB}

// A UUID is a BLE attribute UUID, stored in little-endian (on-the-wire)
// byte order. Most UUIDs used by this stack are the 16-bit short form;
// the 128-bit form is retained for completeness when parsing discovery
// responses from peers that use vendor-specific UUIDs.
type UUID struct {
	b []byte
}

// UUID16 returns the UUID corresponding to the 16-bit short form u.
func UUID16(u uint16) UUID {
	return UUID{b: []byte{byte(u), byte(u >> 8)}}
}

// ParseUUID parses a UUID in string form, either "XXXX" (16-bit) or
// the full dashed 128-bit form "XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX".
func ParseUUID(s string) (UUID, error) {
	s = removeDashes(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return UUID{}, fmt.Errorf("gatt: invalid uuid %q: %w", s, err)
	}
	switch len(b) {
	case 2:
		return UUID{b: reverse(b)}, nil
	case 16:
		if b[0] == 0 && b[1] == 0 && string(b[4:]) == string(bleBaseUUIDSuffix) {
			return UUID16(uint16(b[2])<<8 | uint16(b[3])), nil
		}
		return UUID{b: reverse(b)}, nil
	default:
		return UUID{}, fmt.Errorf("gatt: invalid uuid length %q", s)
	}
}

// MustParseUUID is like ParseUUID but panics on error. Intended for
// use with constant UUID strings known at compile time.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

func removeDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Len returns the length of the UUID in bytes: 2 or 16.
func (u UUID) Len() int { return len(u.b) }

// Is16Bit reports whether u is a 16-bit short-form UUID.
func (u UUID) Is16Bit() bool { return len(u.b) == 2 }

// Uint16 returns the 16-bit short form of u. It panics if u is not
// a 16-bit UUID; callers should check Is16Bit first.
func (u UUID) Uint16() uint16 {
	if !u.Is16Bit() {
		panic("gatt: UUID is not 16-bit")
	}
	return uint16(u.b[0]) | uint16(u.b[1])<<8
}

// Equal reports whether u and v identify the same attribute.
func (u UUID) Equal(v UUID) bool {
	if len(u.b) != len(v.b) {
		return false
	}
	for i := range u.b {
		if u.b[i] != v.b[i] {
			return false
		}
	}
	return true
}

// reverseBytes returns the UUID bytes in reverse (big-endian display)
// order, matching how 16-bit UUIDs are shown in the Bluetooth spec.
func (u UUID) reverseBytes() []byte { return reverse(u.b) }

// String renders the UUID in display (big-endian) form.
func (u UUID) String() string {
	b := u.reverseBytes()
	if len(b) == 2 {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(b[0:4]),
		hex.EncodeToString(b[4:6]),
		hex.EncodeToString(b[6:8]),
		hex.EncodeToString(b[8:10]),
		hex.EncodeToString(b[10:16]))
}

// reverse returns a new slice containing b's bytes in reverse order.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
