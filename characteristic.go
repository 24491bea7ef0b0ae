package gatt

// Characteristic property bits (spec.md §3), grounded on
// original_source/inc/gatt.h's GATT_PROP_* enumeration.
const (
	PropBroadcast       uint8 = 0x01
	PropRead            uint8 = 0x02
	PropWriteNoResp     uint8 = 0x04
	PropWrite           uint8 = 0x08
	PropNotify          uint8 = 0x10
	PropIndicate        uint8 = 0x20
	PropAuthSignedWrite uint8 = 0x40
	PropExtendedProps   uint8 = 0x80
)

// Characteristic permission bits, grounded on the same source.
const (
	PermNone        uint8 = 0x00
	PermRead        uint8 = 0x01
	PermWrite       uint8 = 0x02
	PermReadEnc     uint8 = 0x04
	PermWriteEnc    uint8 = 0x08
	PermReadAuthen  uint8 = 0x10
	PermWriteAuthen uint8 = 0x20
	PermReadAuthor  uint8 = 0x40
	PermWriteAuthor uint8 = 0x80
)

// maxValueLen is the design parameter bounding characteristic value
// storage (spec.md §3).
const maxValueLen = 512

// subscription tracks the peer's CCCD value for a characteristic:
// the local equivalent of spec.md §4.7's "Subscribe" write.
type subscription uint16

const (
	subscribeNone     subscription = 0x0000
	subscribeNotify   subscription = 0x0001
	subscribeIndicate subscription = 0x0002
)

// Characteristic is an entry in the local GATT database (spec.md §3).
// Handles are allocated once at registration and are stable for the
// lifetime of the stack (spec.md §4.6 remove_service).
type Characteristic struct {
	declHandle  uint16
	uuid        UUID
	props       uint8
	perms       uint8
	valueHandle uint16
	cccdHandle  uint16 // 0 if this characteristic has no CCCD
	value       []byte

	subscribed subscription
}

// UUID returns the characteristic's UUID.
func (c *Characteristic) UUID() UUID { return c.uuid }

// DeclHandle returns the characteristic declaration handle.
func (c *Characteristic) DeclHandle() uint16 { return c.declHandle }

// ValueHandle returns the characteristic value handle (DeclHandle+1,
// spec.md §3).
func (c *Characteristic) ValueHandle() uint16 { return c.valueHandle }

// CCCDHandle returns the CCCD handle (DeclHandle+2), or 0 if this
// characteristic has no CCCD (present only when it supports Notify or
// Indicate).
func (c *Characteristic) CCCDHandle() uint16 { return c.cccdHandle }

// Properties returns the characteristic's property bitmap.
func (c *Characteristic) Properties() uint8 { return c.props }

// HasProperty reports whether p is set in the property bitmap.
func (c *Characteristic) HasProperty(p uint8) bool { return c.props&p != 0 }

// Value returns a copy of the characteristic's current value.
func (c *Characteristic) Value() []byte {
	out := make([]byte, len(c.value))
	copy(out, c.value)
	return out
}
