package gatt

// Transport is the byte-level UART collaborator the engine consumes.
// It is deliberately minimal: the engine owns all framing and protocol
// state, and only needs to push bytes out and tell the driver when to
// stop/resume delivering bytes in (flow control), per spec.md §1.
//
// The driver side, conversely, is expected to call (*Stack).OnRxByte
// for every byte it receives, exactly as an interrupt handler would.
type Transport interface {
	// Write transmits p in full or returns an error. Implementations
	// do not need to be safe for concurrent use from multiple
	// goroutines; the engine serializes all writers (command
	// rendezvous) except ACL transmit, which it serializes internally.
	Write(p []byte) (int, error)

	// SetFlowControl is called with asserted=false when the engine's
	// RX buffer is full (free_space() == 0, spec.md §4.2) and the
	// driver must deassert RTS / stop delivering bytes, and with
	// asserted=true once space has been freed.
	SetFlowControl(asserted bool)
}

// Clock is the millisecond time source the engine consumes (spec.md
// §1's now_ms/sleep_ms). Kept as its own interface so tests can supply
// a fake clock that doesn't actually block.
type Clock interface {
	NowMs() int64
	SleepMs(ms int)
}
