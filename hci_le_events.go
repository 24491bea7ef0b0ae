package gatt

// handleLEMeta dispatches the LE Meta Event's sub-event (spec.md §4.3).
// The connection-complete sub-event updates the single connection
// record and emits a GAP connection event; connection-update leaves the
// record unchanged. All sub-events are additionally handed to onLEEvent
// for the GAP layer to translate into public events.
func (e *hciEngine) handleLEMeta(params []byte) {
	if len(params) < 1 {
		e.reportError(newErr(ErrInvalidEvent, "empty le meta event"))
		return
	}
	sub := params[0]
	rest := params[1:]

	switch sub {
	case subEvtConnectionComplete, subEvtEnhancedConnectionComplete:
		e.handleLEConnectionComplete(rest)
	case subEvtConnectionUpdateComplete:
		e.handleLEConnectionUpdateComplete(rest)
	case subEvtAdvertisingReport:
		// Reported to the GAP layer verbatim; no local state to mutate.
	}

	if e.onLEEvent != nil {
		e.onLEEvent(sub, rest)
	}
}

// handleLEConnectionComplete parses the common prefix of both the LE
// Connection Complete and Enhanced Connection Complete sub-events:
// [status][handle_lo][handle_hi][role][peer_addr_type][peer_addr(6)]...
func (e *hciEngine) handleLEConnectionComplete(params []byte) {
	if len(params) < 10 {
		e.reportError(newErr(ErrInvalidEvent, "short le connection complete"))
		return
	}
	status := params[0]
	handle := uint16(params[1]) | uint16(params[2])<<8

	var peer Address
	if len(params) >= 11 {
		copy(peer[:], reverse(params[5:11]))
	}

	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	if status != 0 {
		e.conn = connRecord{}
		e.state = StateReady
		return
	}

	e.conn = connRecord{handle: handle, peerAddr: peer, attMTU: 23, connected: true}
	e.state = StateConnected
	if e.onGAPConn != nil {
		e.onGAPConn(handle, true)
	}
}

// handleLEConnectionUpdateComplete parses [status][handle_lo][handle_hi]
// [conn_interval(2)][conn_latency(2)][supervision_timeout(2)].
func (e *hciEngine) handleLEConnectionUpdateComplete(params []byte) {
	if len(params) < 9 {
		e.reportError(newErr(ErrInvalidEvent, "short le connection update complete"))
		return
	}
	// Parameters are surfaced to the GAP layer via onLEEvent; the
	// connection record itself only tracks handle/MTU/flags per
	// spec.md §3's single-entry connection record.
}

// handleDisconnectionComplete parses [status][handle_lo][handle_hi]
// [reason] (spec.md §6).
func (e *hciEngine) handleDisconnectionComplete(params []byte) {
	if len(params) < 4 {
		e.reportError(newErr(ErrInvalidEvent, "short disconnection complete"))
		return
	}
	handle := uint16(params[1]) | uint16(params[2])<<8

	e.stateMu.Lock()
	wasConnected := e.conn.connected && e.conn.handle == handle
	e.conn = connRecord{}
	e.state = StateReady
	e.stateMu.Unlock()

	if wasConnected && e.onGAPConn != nil {
		e.onGAPConn(handle, false)
	}
}
