package gatt

// ATT/L2CAP I/O (spec.md §4.5). Every ATT request/response rides an
// L2CAP frame on ACL. The ATT channel ID is fixed at 0x0004; other
// CIDs are ignored in this single-purpose design.

const attCID = 0x0004

// l2capFrame builds an L2CAP frame carrying an ATT PDU:
// [len_lo][len_hi][cid_lo][cid_hi][att_pdu...].
func l2capFrame(attPDU []byte) []byte {
	out := make([]byte, 4+len(attPDU))
	out[0] = byte(len(attPDU))
	out[1] = byte(len(attPDU) >> 8)
	out[2] = byte(attCID)
	out[3] = byte(attCID >> 8)
	copy(out[4:], attPDU)
	return out
}

// parseL2cap extracts the L2CAP length/CID header from an ACL
// payload and returns the CID and the remaining ATT PDU bytes. It
// requires payload length >= 5, as spec.md §4.5 specifies.
func parseL2cap(payload []byte) (cid uint16, attPDU []byte, ok bool) {
	if len(payload) < 5 {
		return 0, nil, false
	}
	l2capLen := int(payload[0]) | int(payload[1])<<8
	cid = uint16(payload[2]) | uint16(payload[3])<<8
	rest := payload[4:]
	if l2capLen > len(rest) {
		l2capLen = len(rest)
	}
	return cid, rest[:l2capLen], true
}
