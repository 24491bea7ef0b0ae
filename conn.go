package gatt

// ConnectionInfo reports the state of the stack's single active
// connection, adapted from the teacher's per-link conn type (which
// carried a server backreference and a *BDAddr pair) to this design's
// one-connection-at-a-time model (spec.md §3).
type ConnectionInfo struct {
	Handle     uint16
	LocalAddr  Address
	RemoteAddr Address
	MTU        uint16
}

func (c ConnectionInfo) String() string { return c.RemoteAddr.String() }

// ConnectionInfo returns the active connection's details, and false
// if nothing is currently connected.
func (s *Stack) ConnectionInfo() (ConnectionInfo, bool) {
	rec, connected := s.engine.Connection()
	if !connected {
		return ConnectionInfo{}, false
	}
	return ConnectionInfo{
		Handle:     rec.handle,
		LocalAddr:  s.engine.localAddr,
		RemoteAddr: rec.peerAddr,
		MTU:        rec.attMTU,
	}, true
}
