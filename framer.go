package gatt

// RX framer: a byte-by-byte state machine assembling complete HCI
// packets from the UART, fed one byte at a time from the driver's
// receive path (spec.md §4.2). A fixed 256-byte buffer, matching the
// design's buffer budget.

type frameState int

const (
	frameAwaitType frameState = iota
	frameAwaitEventHeader
	frameAwaitAclHeader
	frameAwaitPayload
)

const rxBufferSize = 256

// framer accumulates incoming bytes into a complete packet. It is not
// safe for concurrent use; the engine serializes all calls to
// onByte from a single driver-owned receive path (spec.md §5).
type framer struct {
	state    frameState
	buf      [rxBufferSize]byte
	count    int
	expected int

	onEvent func(Event)
	onAcl   func(AclPacket)
}

func newFramer(onEvent func(Event), onAcl func(AclPacket)) *framer {
	return &framer{state: frameAwaitType, onEvent: onEvent, onAcl: onAcl}
}

// freeSpace reports remaining buffer capacity. The driver must
// deassert flow control when this reaches zero (spec.md §4.2).
func (f *framer) freeSpace() int { return rxBufferSize - f.count }

// onByte feeds one received byte into the state machine. When a
// complete packet is assembled it is decoded and dispatched
// synchronously via onEvent/onAcl before onByte returns, matching
// spec.md's "deliver the complete packet to the HCI engine's
// synchronous dispatch" requirement.
func (f *framer) onByte(b byte) {
	if f.count >= rxBufferSize {
		// Buffer overrun: the driver failed to honor flow control.
		// Drop and resynchronize rather than corrupt state.
		f.reset()
		return
	}
	f.buf[f.count] = b
	f.count++

	switch f.state {
	case frameAwaitType:
		switch b {
		case pktTypeEvent:
			f.state = frameAwaitEventHeader
		case pktTypeACLData:
			f.state = frameAwaitAclHeader
		default:
			logHCI.Debugf("framer: discarding unknown packet type 0x%02X", b)
			f.reset()
		}

	case frameAwaitEventHeader:
		if f.count == 3 {
			paramLen := f.buf[2]
			f.expected = int(paramLen) + 3
			f.state = frameAwaitPayload
			f.checkComplete()
		}

	case frameAwaitAclHeader:
		if f.count == 5 {
			dataLen := int(f.buf[3]) | int(f.buf[4])<<8
			f.expected = dataLen + 5
			f.state = frameAwaitPayload
			f.checkComplete()
		}

	case frameAwaitPayload:
		f.checkComplete()
	}
}

func (f *framer) checkComplete() {
	if f.count < f.expected {
		return
	}
	pkt := make([]byte, f.count)
	copy(pkt, f.buf[:f.count])
	typ := pkt[0]
	f.reset()

	switch typ {
	case pktTypeEvent:
		if ev, err := DecodeEvent(pkt); err == nil {
			f.onEvent(ev)
		} else {
			logHCI.Warnf("framer: bad event packet: %v", err)
		}
	case pktTypeACLData:
		if acl, err := DecodeAcl(pkt); err == nil {
			f.onAcl(acl)
		} else {
			logHCI.Warnf("framer: bad acl packet: %v", err)
		}
	}
}

func (f *framer) reset() {
	f.state = frameAwaitType
	f.count = 0
	f.expected = 0
}
