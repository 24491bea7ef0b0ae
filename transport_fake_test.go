package gatt

import "sync"

// fakeTransport records every byte written, for assertions against the
// wire codec, and lets tests simulate controller responses by feeding
// bytes back in through OnRxByte.
type fakeTransport struct {
	mu       sync.Mutex
	written  [][]byte
	fcEvents []bool
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	cp := append([]byte(nil), p...)
	f.written = append(f.written, cp)
	f.mu.Unlock()
	return len(p), nil
}

func (f *fakeTransport) SetFlowControl(asserted bool) {
	f.mu.Lock()
	f.fcEvents = append(f.fcEvents, asserted)
	f.mu.Unlock()
}

func (f *fakeTransport) last() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return nil
	}
	return f.written[len(f.written)-1]
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

// fakeClock never actually sleeps, so firmware-download tests run
// instantly.
type fakeClock struct {
	ms int64
}

func (c *fakeClock) NowMs() int64 { return c.ms }
func (c *fakeClock) SleepMs(ms int) {
	c.ms += int64(ms)
}

// feedEvent pushes a complete HCI event packet (including the leading
// 0x04 type byte) through the engine's byte-at-a-time receive path, as
// the real UART driver would.
func feedEvent(e *hciEngine, pkt []byte) {
	for _, b := range pkt {
		e.OnRxByte(b)
	}
}

// commandCompletePacket builds a minimal Command Complete event packet
// for opcode op with status and return params.
func commandCompletePacket(op opcode, status byte, ret []byte) []byte {
	params := make([]byte, 4+len(ret))
	params[0] = 1 // num_hci_command_packets
	params[1] = byte(op)
	params[2] = byte(uint16(op) >> 8)
	params[3] = status
	copy(params[4:], ret)
	return append([]byte{pktTypeEvent, evtCommandComplete, byte(len(params))}, params...)
}
