package gatt

// Wire codec: encodes and decodes the HCI H4 packet kinds tagged by a
// leading type byte (spec.md §4.1). Encoding/decoding is pure and
// side-effect-free; callers own all buffers.

// Command is a decoded/to-be-encoded HCI command packet.
type Command struct {
	Opcode opcode
	Params []byte
}

// encodedLen returns the number of bytes Encode will produce.
func (c Command) encodedLen() int { return 4 + len(c.Params) }

// Encode writes the H4 command framing into dst and returns the
// number of bytes written. dst must have at least encodedLen() bytes
// of capacity, or ErrBufferOverflow is returned.
//
// Layout: [0x01][opcode_lo][opcode_hi][param_len][params...], where
// opcode is the little-endian 16-bit value whose low 10 bits are OCF
// and whose top 6 bits are OGF (spec.md §4.1).
func (c Command) Encode(dst []byte) (int, error) {
	n := c.encodedLen()
	if len(dst) < n {
		return 0, newErr(ErrBufferOverflow, "command buffer too small")
	}
	if len(c.Params) > 255 {
		return 0, newErr(ErrInvalidParameters, "command params too long")
	}
	dst[0] = pktTypeCommand
	dst[1] = byte(c.Opcode)
	dst[2] = byte(uint16(c.Opcode) >> 8)
	dst[3] = byte(len(c.Params))
	copy(dst[4:], c.Params)
	return n, nil
}

// DecodeCommand parses a complete command packet (including the
// leading 0x01 type byte) out of src.
func DecodeCommand(src []byte) (Command, error) {
	if len(src) < 4 {
		return Command{}, newErr(ErrBufferOverflow, "command packet too short")
	}
	op := opcode(uint16(src[1]) | uint16(src[2])<<8)
	plen := int(src[3])
	if len(src) < 4+plen {
		return Command{}, newErr(ErrBufferOverflow, "command packet truncated")
	}
	params := make([]byte, plen)
	copy(params, src[4:4+plen])
	return Command{Opcode: op, Params: params}, nil
}

// AclPacket is a decoded/to-be-encoded ACL data unit.
type AclPacket struct {
	Handle uint16 // 12-bit connection handle
	PB     uint8  // 2-bit packet-boundary flag
	BC     uint8  // 2-bit broadcast flag
	Data   []byte
}

func (a AclPacket) encodedLen() int { return 5 + len(a.Data) }

// Encode writes the H4 ACL framing into dst.
//
// Layout: [0x02][handle_lo][handle_hi_4bits|pb<<4|bc<<6][len_lo][len_hi][data...]
func (a AclPacket) Encode(dst []byte) (int, error) {
	n := a.encodedLen()
	if len(dst) < n {
		return 0, newErr(ErrBufferOverflow, "acl buffer too small")
	}
	if len(a.Data) > 0xFFFF {
		return 0, newErr(ErrInvalidParameters, "acl data too long")
	}
	dst[0] = pktTypeACLData
	dst[1] = byte(a.Handle)
	dst[2] = byte(a.Handle>>8&0x0F) | (a.PB&0x03)<<4 | (a.BC&0x03)<<6
	dst[3] = byte(len(a.Data))
	dst[4] = byte(len(a.Data) >> 8)
	copy(dst[5:], a.Data)
	return n, nil
}

// DecodeAcl parses a complete ACL packet (including the leading 0x02
// type byte) out of src.
func DecodeAcl(src []byte) (AclPacket, error) {
	if len(src) < 5 {
		return AclPacket{}, newErr(ErrBufferOverflow, "acl packet too short")
	}
	handle := uint16(src[1]) | uint16(src[2]&0x0F)<<8
	pb := (src[2] >> 4) & 0x03
	bc := (src[2] >> 6) & 0x03
	dlen := int(src[3]) | int(src[4])<<8
	if len(src) < 5+dlen {
		return AclPacket{}, newErr(ErrBufferOverflow, "acl packet truncated")
	}
	data := make([]byte, dlen)
	copy(data, src[5:5+dlen])
	return AclPacket{Handle: handle, PB: pb, BC: bc, Data: data}, nil
}

// Event is a decoded HCI event packet.
type Event struct {
	Code   byte
	Params []byte
}

// DecodeEvent parses a complete event packet (including the leading
// 0x04 type byte) out of src.
func DecodeEvent(src []byte) (Event, error) {
	if len(src) < 3 {
		return Event{}, newErr(ErrBufferOverflow, "event packet too short")
	}
	plen := int(src[2])
	if len(src) < 3+plen {
		return Event{}, newErr(ErrBufferOverflow, "event packet truncated")
	}
	params := make([]byte, plen)
	copy(params, src[3:3+plen])
	return Event{Code: src[1], Params: params}, nil
}

// IsLEMeta reports whether e is the LE Meta Event, and if so, returns
// its sub-event code (the first parameter byte) per spec.md §4.3.
func (e Event) IsLEMeta() (subevent byte, ok bool) {
	if e.Code != evtLEMeta || len(e.Params) < 1 {
		return 0, false
	}
	return e.Params[0], true
}

// msToUnits converts a millisecond interval to the 0.625 ms Bluetooth
// time unit used throughout HCI parameters (spec.md §4.3). Integer
// arithmetic only, matching units = (ms * 16) / 10 exactly.
func msToUnits(ms int) uint16 {
	return uint16((ms * 16) / 10)
}
