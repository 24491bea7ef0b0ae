package gatt

import (
	"sync"
	"time"
)

// ControllerState is the HCI engine's controller state machine
// (spec.md §3). Transitions are driven only by command-complete/
// command-status events (§4.3).
type ControllerState int

const (
	StateIdle ControllerState = iota
	StateWaitingResponse
	StateReady
	StateAdvertising
	StateScanning
	StateConnecting
	StateConnected
	StateDisconnected
	StateSleep
	StateError
)

func (s ControllerState) String() string {
	names := [...]string{
		"Idle", "WaitingResponse", "Ready", "Advertising", "Scanning",
		"Connecting", "Connected", "Disconnected", "Sleep", "Error",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// connRecord is the single-entry connection record (spec.md §3).
type connRecord struct {
	handle             uint16
	peerAddr           Address
	attMTU             uint16
	connected          bool
	servicesDiscovered bool
}

// cmdResult is delivered over the engine's single-slot result channel
// when a Command Complete or Command Status event clears the
// outstanding command.
type cmdResult struct {
	opcode   opcode
	status   byte
	params   []byte // return parameters, only populated for Command Complete
	isStatus bool   // true if this was a Command Status, not Command Complete
}

// hciEngine is the HCI transport and state machine (spec.md §4.3): it
// frames, dispatches, and correlates controller commands, responses,
// events, and ACL data. All mutable state is privately owned here.
type hciEngine struct {
	transport Transport
	clock     Clock
	framer    *framer

	cmdTimeout time.Duration
	fwTimeout  time.Duration

	// cmdMu serializes submitCommand calls end-to-end: "exactly one
	// command is ever in flight" (spec.md §5) falls directly out of
	// holding this for the whole rendezvous.
	cmdMu sync.Mutex

	// fieldsMu guards the fields below, which are written by
	// submitCommand (the foreground caller) and read/cleared by
	// dispatchEvent (invoked from OnRxByte, a possibly distinct
	// "ISR" goroutine).
	fieldsMu        sync.Mutex
	waitingResponse bool
	pendingOpcode   opcode
	resultCh        chan cmdResult

	// stateMu guards controller/connection state, read by callers of
	// State()/Connection() concurrently with event dispatch.
	stateMu sync.Mutex
	state   ControllerState
	conn    connRecord

	localAddr Address
	localName string

	// flowControlOff tracks whether the driver was last told to stop
	// delivering bytes, so OnRxByte knows when to reassert flow
	// control as the RX buffer drains.
	flowControlOff bool

	errorHandler func(error)
	onACL        func(AclPacket)
	onLEEvent    func(subevent byte, params []byte)
	onGAPConn    func(handle uint16, connected bool)
}

func newHciEngine(cfg Config) *hciEngine {
	e := &hciEngine{
		transport:  cfg.Transport,
		clock:      cfg.Clock,
		cmdTimeout: cfg.CommandTimeout,
		fwTimeout:  cfg.FirmwareRecordTimeout,
		state:      StateIdle,
		localAddr:  cfg.Address,
		localName:  cfg.LocalName,
	}
	e.framer = newFramer(e.dispatchEvent, e.dispatchACL)
	return e
}

// OnRxByte is the engine's ISR-context entry point (spec.md §1): the
// driver calls this once per received UART byte. Flow control is
// deasserted once the RX buffer fills and reasserted once a completed
// packet (or a resync) frees it back up, so a full buffer never wedges
// the link (spec.md §4.2).
func (e *hciEngine) OnRxByte(b byte) {
	e.framer.onByte(b)
	switch {
	case e.framer.freeSpace() == 0:
		if !e.flowControlOff {
			e.flowControlOff = true
			e.transport.SetFlowControl(false)
		}
	case e.flowControlOff:
		e.flowControlOff = false
		e.transport.SetFlowControl(true)
	}
}

func (e *hciEngine) State() ControllerState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

func (e *hciEngine) setState(s ControllerState) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// ConnHandle returns the current connection handle and whether a
// connection is active. This design supports a single connection at a
// time (spec.md §3).
func (e *hciEngine) ConnHandle() (uint16, bool) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.conn.handle, e.conn.connected
}

// setConn updates the single connection record under stateMu.
func (e *hciEngine) setConn(rec connRecord) {
	e.stateMu.Lock()
	e.conn = rec
	e.stateMu.Unlock()
}

// Connection returns a copy of the current connection record and
// whether a connection is active.
func (e *hciEngine) Connection() (connRecord, bool) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.conn, e.conn.connected
}

// submitCommand serializes cmd, transmits it, and blocks until the
// engine observes the matching Command Complete or Command Status
// (spec.md §4.3), or the bounded deadline elapses (§9).
func (e *hciEngine) submitCommand(cmd Command) ([]byte, error) {
	return e.submitCommandDeadline(cmd, e.cmdTimeout)
}

// submitCommandDeadline is submitCommand with an explicit timeout,
// used by firmware download to apply the longer FirmwareRecordTimeout
// (spec.md §9) to each record without racing cmdTimeout under
// concurrent callers.
func (e *hciEngine) submitCommandDeadline(cmd Command, timeout time.Duration) ([]byte, error) {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	buf := make([]byte, cmd.encodedLen())
	if _, err := cmd.Encode(buf); err != nil {
		return nil, err
	}

	ch := make(chan cmdResult, 1)
	e.fieldsMu.Lock()
	e.waitingResponse = true
	e.pendingOpcode = cmd.Opcode
	e.resultCh = ch
	e.fieldsMu.Unlock()

	logHCI.Debugf("submit command %s (0x%04X) params=% X", cmd.Opcode, uint16(cmd.Opcode), cmd.Params)
	if _, err := e.transport.Write(buf); err != nil {
		e.fieldsMu.Lock()
		e.waitingResponse = false
		e.fieldsMu.Unlock()
		return nil, wrapErr(ErrInternal, "transport write failed", err)
	}

	select {
	case res := <-ch:
		if res.isStatus {
			if res.status != 0 {
				return nil, newErr(ErrInternal, "command status reported failure")
			}
			return nil, nil
		}
		if res.status != 0 {
			return nil, newErr(ErrInternal, "command complete reported failure")
		}
		return res.params, nil
	case <-time.After(timeout):
		e.fieldsMu.Lock()
		e.waitingResponse = false
		e.fieldsMu.Unlock()
		logHCI.Warnf("command %s timed out", cmd.Opcode)
		return nil, newErr(ErrCommandTimeout, "no response within deadline")
	}
}

// submitAcl is fire-and-forget ACL transmission; no response
// rendezvous (spec.md §4.3). Independent of the command rendezvous
// and may interleave with it (spec.md §5).
func (e *hciEngine) submitAcl(handle uint16, data []byte) error {
	pkt := AclPacket{Handle: handle, PB: 0, BC: 0, Data: data}
	buf := make([]byte, pkt.encodedLen())
	if _, err := pkt.Encode(buf); err != nil {
		return err
	}
	_, err := e.transport.Write(buf)
	if err != nil {
		return wrapErr(ErrInternal, "transport write failed", err)
	}
	return nil
}

// dispatchEvent is the framer's onEvent callback: it runs in "ISR
// context" (spec.md §5) and must not block.
func (e *hciEngine) dispatchEvent(ev Event) {
	switch ev.Code {
	case evtCommandComplete:
		e.handleCommandComplete(ev.Params)
	case evtCommandStatus:
		e.handleCommandStatus(ev.Params)
	case evtLEMeta:
		e.handleLEMeta(ev.Params)
	case evtDisconnectionComplete:
		e.handleDisconnectionComplete(ev.Params)
	case evtHardwareError:
		e.reportError(newErr(ErrInternal, "hardware error event"))
	case evtEncryptionChange, evtNumberOfCompletedPkts:
		// Acknowledged but not modeled further per spec.md §1 scope.
	default:
		logHCI.Debugf("unhandled event code 0x%02X", ev.Code)
	}
}

func (e *hciEngine) dispatchACL(pkt AclPacket) {
	if e.onACL != nil {
		e.onACL(pkt)
	}
}

// handleCommandComplete parses [num_cmd_packets][opcode_lo][opcode_hi]
// [status][return_params...] and clears waitingResponse (spec.md §4.3).
func (e *hciEngine) handleCommandComplete(params []byte) {
	if len(params) < 4 {
		e.reportError(newErr(ErrInvalidEvent, "short command complete"))
		return
	}
	op := opcode(uint16(params[1]) | uint16(params[2])<<8)
	status := params[3]
	ret := params[4:]

	if status == 0 {
		e.advanceStateOnComplete(op)
	} else {
		e.reportError(newErr(ErrInternal, "command failed: "+op.String()))
	}

	e.completePending(cmdResult{opcode: op, status: status, params: ret})
}

// handleCommandStatus parses [status][num_cmd_packets][opcode_lo]
// [opcode_hi]. Clears waitingResponse, same as Command Complete,
// per spec.md §4.3/§9's resolved open question.
func (e *hciEngine) handleCommandStatus(params []byte) {
	if len(params) < 4 {
		e.reportError(newErr(ErrInvalidEvent, "short command status"))
		return
	}
	status := params[0]
	op := opcode(uint16(params[2]) | uint16(params[3])<<8)

	if status == 0 {
		switch op {
		case opLECreateConnection:
			e.setState(StateConnecting)
		case opDisconnect:
			e.setState(StateDisconnected)
		}
	} else {
		e.reportError(newErr(ErrInternal, "command status failure: "+op.String()))
	}

	e.completePending(cmdResult{opcode: op, status: status, isStatus: true})
}

// completePending delivers res to the waiting submitCommand call, if
// the opcode matches what's outstanding. Any other event is
// dispatched without clearing waitingResponse (spec.md §4.3).
func (e *hciEngine) completePending(res cmdResult) {
	e.fieldsMu.Lock()
	defer e.fieldsMu.Unlock()
	if !e.waitingResponse || res.opcode != e.pendingOpcode {
		return
	}
	e.waitingResponse = false
	ch := e.resultCh
	e.resultCh = nil
	if ch != nil {
		ch <- res
	}
}

// advanceStateOnComplete applies the opcode -> state transition table
// from spec.md §4.3. The toggle is driven by current state, not a
// command parameter.
func (e *hciEngine) advanceStateOnComplete(op opcode) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	switch op {
	case opReset, opReadRemoteVersionInfo, opLESetRandomAddress, opLESetScanParameters, opReadBdAddr:
		e.state = StateReady
	case opLESetAdvertiseEnable:
		if e.state == StateAdvertising {
			e.state = StateReady
		} else {
			e.state = StateAdvertising
		}
	case opLESetScanEnable:
		if e.state == StateScanning {
			e.state = StateReady
		} else {
			e.state = StateScanning
		}
	}
}

func (e *hciEngine) reportError(err error) {
	logHCI.Warnf("%v", err)
	if e.errorHandler != nil {
		e.errorHandler(err)
	}
}
