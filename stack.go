package gatt

// Stack is the top-level BLE host stack (spec.md §1): an HCI engine
// driving a single BCM4345C0-class controller over UART, a GAP policy
// layer on top of it, and a local GATT database served to a connected
// peer plus a client for talking to one.
type Stack struct {
	cfg    Config
	engine *hciEngine
	gap    *GAPLayer
	db     *Database
	client *Client
	server *gattServer
}

// NewStack constructs a Stack from cfg without touching the
// controller; call Init to bring it up.
func NewStack(cfg Config) *Stack {
	cfg = cfg.withDefaults()
	engine := newHciEngine(cfg)

	db := NewDatabase()
	handlers := cfg.Handlers
	client := newAttClient(engine, cfg.CommandTimeout, &handlers)
	server := newGattServer(engine, db, client, &handlers)
	g := newGAP(engine, &handlers)

	engine.onACL = func(pkt AclPacket) {
		if cid, attPDU, ok := parseL2cap(pkt.Data); ok && cid == attCID {
			server.dispatchATT(attPDU)
		}
	}
	engine.errorHandler = func(err error) {
		if handlers.OnError != nil {
			handlers.OnError(err)
		}
	}

	return &Stack{cfg: cfg, engine: engine, gap: g, db: db, client: client, server: server}
}

// OnRxByte feeds one received UART byte into the stack. Call this
// from the driver's UART receive path, one byte at a time.
func (s *Stack) OnRxByte(b byte) { s.engine.OnRxByte(b) }

// State returns the controller's current state.
func (s *Stack) State() ControllerState { return s.engine.State() }

// Init resets the controller, optionally downloads vendor firmware,
// programs the event mask/address/name, and leaves the controller in
// the Ready state (spec.md §4.3's boot sequence): Reset must precede
// any vendor firmware download, which in turn precedes the event
// mask/address/name programming.
func (s *Stack) Init() error {
	if err := s.gap.Reset(); err != nil {
		return err
	}
	if len(s.cfg.Firmware) > 0 {
		if err := s.engine.bcmLoadFirmware(s.cfg.Firmware); err != nil {
			return err
		}
	}
	if err := s.gap.Configure(s.cfg.Address, s.cfg.EventMask); err != nil {
		return err
	}
	if s.cfg.LocalName != "" {
		if err := s.gap.SetDeviceName(s.cfg.LocalName); err != nil {
			return err
		}
	}
	return nil
}

// GAP returns the GAP policy facade (advertising/scanning/connections).
func (s *Stack) GAP() *GAPLayer { return s.gap }

// Database returns the local GATT attribute database, for registering
// services and characteristics before or after Init.
func (s *Stack) Database() *Database { return s.db }

// Client returns the outbound GATT client, for use once connected to
// a peripheral.
func (s *Stack) Client() *Client { return s.client }

// Notify pushes a notification for a local characteristic to the
// connected, subscribed peer.
func (s *Stack) Notify(serviceUUID, charUUID UUID, value []byte) error {
	return s.server.Notify(serviceUUID, charUUID, value)
}

// Indicate pushes an indication for a local characteristic to the
// connected, subscribed peer.
func (s *Stack) Indicate(serviceUUID, charUUID UUID, value []byte) error {
	return s.server.Indicate(serviceUUID, charUUID, value)
}

// Notifier returns a streaming handle for pushing repeated
// notifications (or indications) to the named characteristic, e.g.
// for a caller that wants an io.Writer rather than one-shot calls.
func (s *Stack) Notifier(serviceUUID, charUUID UUID, indicate bool) (*Notifier, error) {
	char, err := s.db.FindCharacteristic(serviceUUID, charUUID)
	if err != nil {
		return nil, err
	}
	return NewNotifier(s.server, char, indicate, maxValueLen), nil
}
