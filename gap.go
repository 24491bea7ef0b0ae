package gatt

import "fmt"

// Advertising/scanning/connection parameter bounds (spec.md §4.4).
const (
	minAdvIntervalMs = 20
	maxAdvIntervalMs = 10240

	minScanWindowMs   = 3
	maxScanIntervalMs = 10240

	minConnIntervalMs = 7
	maxConnIntervalMs = 4000
)

// AdvertisingParams configures start_advertising (spec.md §4.4).
type AdvertisingParams struct {
	IntervalMs  int
	Connectable bool
	ChannelMap  uint8 // bit0=ch37, bit1=ch38, bit2=ch39; 0 rejected
}

// AdvType is the LE advertising PDU type (spec.md §4.4).
type AdvType uint8

const (
	AdvTypeUndirectedConnectable    AdvType = 0x00
	AdvTypeUndirectedNonConnectable AdvType = 0x03
)

// AdvertisingParameters configures set_advertising_parameters (spec.md
// §4.4): the standalone LE Set Advertising Parameters operation, as
// distinct from StartAdvertising's min=max convenience, allowing an
// asymmetric interval range and a caller-chosen filter policy.
type AdvertisingParameters struct {
	Type          AdvType
	MinIntervalMs int
	MaxIntervalMs int
	ChannelMap    uint8 // bit0=ch37, bit1=ch38, bit2=ch39; 0 rejected
	FilterPolicy  uint8
}

// GAPLayer implements the GAP policy layer: advertising, scanning, and
// connection establishment, all expressed as HCI command sequences
// driven through the shared hciEngine (spec.md §4.4).
type GAPLayer struct {
	engine *hciEngine
	h      *Handlers
}

func newGAP(engine *hciEngine, h *Handlers) *GAPLayer {
	g := &GAPLayer{engine: engine, h: h}
	engine.onLEEvent = g.onLEEvent
	engine.onGAPConn = g.onGAPConn
	return g
}

// Reset submits the Reset command, the first step of spec.md §4.3's
// boot sequence, ahead of any vendor firmware download.
func (g *GAPLayer) Reset() error {
	if _, err := g.engine.submitCommand(Command{Opcode: opReset}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// Configure programs the event mask and, if addr is non-zero, the
// local Bluetooth address. Per spec.md §4.3's boot sequence this runs
// after Reset and any vendor firmware download.
func (g *GAPLayer) Configure(addr Address, eventMask uint64) error {
	if err := g.engine.setEventMask(eventMask); err != nil {
		return hciErr(asErr(err))
	}
	if !addr.IsZero() {
		if err := g.engine.setBtAddr(addr); err != nil {
			return hciErr(asErr(err))
		}
	}
	return nil
}

// SetDeviceName sets the controller's local name (WriteLocalName) and
// the name used in advertising. Per spec.md §4.4 this also
// rebuilds the advertising data to carry the Flags and Complete/
// Shortened Local Name AD structures and installs it via LE Set
// Advertising Data, so a name change is reflected the next time
// advertising is (re)started.
func (g *GAPLayer) SetDeviceName(name string) error {
	if err := g.engine.setLocalName(name); err != nil {
		return hciErr(asErr(err))
	}
	g.engine.localName = name

	adv := new(advPacket)
	adv.appendFlags(flagGeneralDiscoverable | flagLEOnly)
	adv.appendName(name)
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetAdvertisingData, Params: advertisingDataParams(adv.data)}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// advertisingDataParams pads an AD payload to the fixed 31-byte LE Set
// Advertising Data command format: a 1-byte length prefix followed by
// 31 bytes of (possibly zero-padded) AD structures (spec.md §4.4).
func advertisingDataParams(adv []byte) []byte {
	if len(adv) > MaxEIRPacketLength {
		adv = adv[:MaxEIRPacketLength]
	}
	params := make([]byte, 1+MaxEIRPacketLength)
	params[0] = byte(len(adv))
	copy(params[1:], adv)
	return params
}

// SetScanResponseName installs name as the scan response payload, via
// LE Set Scan Response Data, for a scanner that requests it with a
// Scan Request after seeing this device's advertising packet.
func (g *GAPLayer) SetScanResponseName(name string) error {
	pkt := nameScanResponsePacket(name)
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetScanResponseData, Params: advertisingDataParams(pkt)}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// SetManufacturerData installs a Manufacturer Specific Data field
// (company id + arbitrary payload) as part of the advertising packet,
// replacing whatever Flags/name fields SetDeviceName previously built.
func (g *GAPLayer) SetManufacturerData(companyID uint16, data []byte) error {
	adv := new(advPacket)
	adv.appendFlags(flagGeneralDiscoverable | flagLEOnly)
	adv.appendManufacturerData(companyID, data)
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetAdvertisingData, Params: advertisingDataParams(adv.data)}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// AdvertiseServices installs an advertising packet carrying the Flags
// field plus as many of the given service UUIDs as fit within
// MaxEIRPacketLength, skipping the mandatory GAP/GATT services (they're
// discoverable without being advertised). Returns the subset of uuids
// that fit.
func (g *GAPLayer) AdvertiseServices(uuids []UUID) ([]UUID, error) {
	data, fit := serviceAdvertisingPacket(uuids)
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetAdvertisingData, Params: advertisingDataParams(data)}); err != nil {
		return nil, hciErr(asErr(err))
	}
	return fit, nil
}

// SetAdvertisingParameters issues LE Set Advertising Parameters without
// touching the advertising-enable state (spec.md §4.4's standalone
// set_advertising_parameters). MinIntervalMs/MaxIntervalMs must satisfy
// 20 ≤ min ≤ max ≤ 10240, and ChannelMap's low three bits must not all
// be zero.
func (g *GAPLayer) SetAdvertisingParameters(p AdvertisingParameters) error {
	if p.MinIntervalMs < minAdvIntervalMs || p.MaxIntervalMs > maxAdvIntervalMs || p.MinIntervalMs > p.MaxIntervalMs {
		return newErr(ErrInvalidParameters, fmt.Sprintf("advertising interval range [%d,%d]ms out of bounds", p.MinIntervalMs, p.MaxIntervalMs))
	}
	if p.ChannelMap&0x07 == 0 {
		return newErr(ErrInvalidParameters, "advertising channel map must not be empty")
	}

	min := msToUnits(p.MinIntervalMs)
	max := msToUnits(p.MaxIntervalMs)
	params := []byte{
		byte(min), byte(min >> 8),
		byte(max), byte(max >> 8),
		byte(p.Type),
		0x00,       // own address type: public
		0x00,       // peer address type: public
		0, 0, 0, 0, 0, 0, // peer address, unused for undirected advertising
		p.ChannelMap,
		p.FilterPolicy,
	}
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetAdvertisingParameters, Params: params}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// StartAdvertising begins advertising with the given parameters
// (spec.md §4.4): LE Set Advertising Parameters with min=max=interval,
// own/peer address type Public, the caller's ChannelMap (rejected if its
// low three bits are all zero), filter Allow All, then LE Set
// Advertising Enable = 1.
func (g *GAPLayer) StartAdvertising(p AdvertisingParams) error {
	advType := AdvTypeUndirectedNonConnectable
	if p.Connectable {
		advType = AdvTypeUndirectedConnectable
	}
	if err := g.SetAdvertisingParameters(AdvertisingParameters{
		Type:          advType,
		MinIntervalMs: p.IntervalMs,
		MaxIntervalMs: p.IntervalMs,
		ChannelMap:    p.ChannelMap,
		FilterPolicy:  0x00, // Allow All
	}); err != nil {
		return err
	}
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetAdvertiseEnable, Params: []byte{0x01}}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// StopAdvertising disables advertising.
func (g *GAPLayer) StopAdvertising() error {
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetAdvertiseEnable, Params: []byte{0x00}}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// StartScanning begins passive scanning (spec.md §4.4). windowMs must
// not exceed intervalMs.
func (g *GAPLayer) StartScanning(intervalMs, windowMs int) error {
	if windowMs > intervalMs {
		return newErr(ErrInvalidParameters, "scan window must not exceed scan interval")
	}
	if intervalMs < minScanWindowMs || intervalMs > maxScanIntervalMs {
		return newErr(ErrInvalidParameters, "scan interval out of range")
	}

	interval := msToUnits(intervalMs)
	window := msToUnits(windowMs)
	params := []byte{
		0x00, // passive scan
		byte(interval), byte(interval >> 8),
		byte(window), byte(window >> 8),
		0x00, // own address type: public
		0x00, // scanning filter policy: accept all
	}
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetScanParameters, Params: params}); err != nil {
		return hciErr(asErr(err))
	}
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetScanEnable, Params: []byte{0x01, 0x00}}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// StopScanning disables scanning.
func (g *GAPLayer) StopScanning() error {
	if _, err := g.engine.submitCommand(Command{Opcode: opLESetScanEnable, Params: []byte{0x00, 0x00}}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// Connect issues LE Create Connection against peer, using fixed
// connection-parameter defaults (spec.md §4.4).
func (g *GAPLayer) Connect(peer Address, scanIntervalMs, scanWindowMs int) error {
	if scanWindowMs > scanIntervalMs {
		return newErr(ErrInvalidParameters, "scan window must not exceed scan interval")
	}
	interval := msToUnits(scanIntervalMs)
	window := msToUnits(scanWindowMs)
	connMin := msToUnits(minConnIntervalMs * 4) // a conservative default, spec.md §4.4
	connMax := msToUnits(minConnIntervalMs * 8)

	params := make([]byte, 0, 25)
	params = append(params, byte(interval), byte(interval>>8))
	params = append(params, byte(window), byte(window>>8))
	params = append(params, 0x00) // initiator filter policy: use peer address
	params = append(params, 0x00) // peer address type: public
	rev := reverse(peer[:])
	params = append(params, rev...)
	params = append(params, 0x00) // own address type: public
	params = append(params, byte(connMin), byte(connMin>>8))
	params = append(params, byte(connMax), byte(connMax>>8))
	params = append(params, 0x00, 0x00) // connection latency
	const supervisionTimeout = uint16(2000 / 10) // 2000ms in 10ms units, spec.md §4.4 default
	params = append(params, byte(supervisionTimeout), byte(supervisionTimeout>>8))
	params = append(params, 0x00, 0x00) // min CE length
	params = append(params, 0x00, 0x00) // max CE length

	_, err := g.engine.submitCommand(Command{Opcode: opLECreateConnection, Params: params})
	if err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// Disconnect tears down the active connection.
func (g *GAPLayer) Disconnect(handle uint16) error {
	params := []byte{byte(handle), byte(handle >> 8), reasonRemoteUserTerminated}
	if _, err := g.engine.submitCommand(Command{Opcode: opDisconnect, Params: params}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// UpdateConnectionParameters renegotiates the active connection's
// interval/latency/timeout (spec.md §4.4).
func (g *GAPLayer) UpdateConnectionParameters(handle uint16, minMs, maxMs int, latency int, timeoutMs int) error {
	if minMs < minConnIntervalMs || maxMs > maxConnIntervalMs || minMs > maxMs {
		return newErr(ErrInvalidParameters, "connection interval out of range")
	}
	if timeoutMs <= 2*maxMs {
		return newErr(ErrInvalidParameters, "supervision timeout must exceed 2x max interval")
	}

	connMin := msToUnits(minMs)
	connMax := msToUnits(maxMs)
	supervisionTimeout := uint16(timeoutMs / 10)

	params := []byte{
		byte(handle), byte(handle >> 8),
		byte(connMin), byte(connMin >> 8),
		byte(connMax), byte(connMax >> 8),
		byte(latency), byte(latency >> 8),
		byte(supervisionTimeout), byte(supervisionTimeout >> 8),
		0x00, 0x00, // min CE length
		0x00, 0x00, // max CE length
	}
	if _, err := g.engine.submitCommand(Command{Opcode: opLEConnectionUpdate, Params: params}); err != nil {
		return hciErr(asErr(err))
	}
	return nil
}

// onLEEvent translates raw LE Meta sub-events into public GAP events.
func (g *GAPLayer) onLEEvent(sub byte, params []byte) {
	switch sub {
	case subEvtAdvertisingReport:
		g.reportAdvertising(params)
	case subEvtConnectionUpdateComplete:
		g.reportConnectionUpdate(params)
	}
}

// reportAdvertising parses one or more advertising reports (spec.md
// §6): [num_reports][event_type][addr_type][addr(6)][len][data][rssi]
// repeated num_reports times. This stack only ever sees num_reports==1
// in practice but loops defensively.
func (g *GAPLayer) reportAdvertising(params []byte) {
	if g.h == nil || g.h.OnScanResult == nil {
		return
	}
	if len(params) < 1 {
		return
	}
	n := int(params[0])
	rest := params[1:]
	for i := 0; i < n; i++ {
		if len(rest) < 9 {
			return
		}
		var addr Address
		copy(addr[:], reverse(rest[2:8]))
		dataLen := int(rest[8])
		if len(rest) < 9+dataLen+1 {
			return
		}
		data := rest[9 : 9+dataLen]
		rssi := int8(rest[9+dataLen])

		var parsed Advertisement
		if err := parsed.Unmarshall(data); err != nil {
			logGAP.Debugf("scan report: %v", err)
		}
		g.h.OnScanResult(ScanResultEvent{
			Peer:          addr,
			RSSI:          rssi,
			AdvData:       append([]byte(nil), data...),
			Advertisement: parsed,
		})
		rest = rest[9+dataLen+1:]
	}
}

// reportConnectionUpdate parses
// [status][handle(2)][interval(2)][latency(2)][timeout(2)].
func (g *GAPLayer) reportConnectionUpdate(params []byte) {
	if g.h == nil || g.h.OnConnectionUpdate == nil || len(params) < 9 {
		return
	}
	if params[0] != 0 {
		return
	}
	handle := uint16(params[1]) | uint16(params[2])<<8
	interval := uint16(params[3]) | uint16(params[4])<<8
	latency := uint16(params[5]) | uint16(params[6])<<8
	timeout := uint16(params[7]) | uint16(params[8])<<8
	g.h.OnConnectionUpdate(ConnectionUpdateEvent{
		Handle:        handle,
		IntervalMs:    int(interval) * 10 / 16,
		LatencyEvents: int(latency),
		TimeoutMs:     int(timeout) * 10,
	})
}

// onGAPConn is hciEngine's connection-state callback.
func (g *GAPLayer) onGAPConn(handle uint16, connected bool) {
	if g.h == nil || g.h.OnConnection == nil {
		return
	}
	g.h.OnConnection(ConnectionEvent{Handle: handle, Connected: connected})
}

// asErr narrows a plain error returned by hciEngine (always a *Error
// in practice) for HciError wrapping; falls back to a generic wrap if
// the concrete type ever changes.
func asErr(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return wrapErr(ErrInternal, "unexpected error type", err)
}
