package gatt

import "fmt"

// An Address is a 6-byte Bluetooth device address, stored in display
// order (most-significant octet first). The HCI layer reverses it to
// and from the little-endian order carried in command/event parameters.
type Address [6]byte

// String renders the address in the conventional big-endian colon-hex
// form, e.g. "AA:BB:CC:DD:EE:FF".
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}
