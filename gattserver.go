package gatt

// gattServer implements the inbound half of the ATT protocol (spec.md
// §4.7): serving requests against the local attribute database when a
// connected peer acts as GATT client, delivering notifications and
// indications pushed by a peer acting as GATT server, and pushing this
// device's own notifications/indications to a subscribed peer.
type gattServer struct {
	engine   *hciEngine
	db       *Database
	client   *Client
	handlers *Handlers

	mtu uint16
}

func newGattServer(engine *hciEngine, db *Database, client *Client, h *Handlers) *gattServer {
	return &gattServer{engine: engine, db: db, client: client, handlers: h, mtu: 23}
}

// dispatchATT is the single entry point for every inbound ATT PDU,
// wired from the stack's ACL dispatcher. It routes responses to the
// outstanding client request, requests to the local database, and
// notifications/indications to the registered handlers.
func (s *gattServer) dispatchATT(pdu []byte) {
	if len(pdu) == 0 {
		return
	}
	switch pdu[0] {
	case attOpMtuResp, attOpReadResp, attOpWriteResp, attOpReadByGroupResp,
		attOpReadByTypeResp, attOpFindInfoResp, attOpFindByTypeResp, attOpError:
		s.client.deliverResponse(pdu)

	case attOpMtuReq:
		s.handleMtuReq(pdu)
	case attOpReadReq:
		s.handleReadReq(pdu)
	case attOpWriteReq:
		s.handleWrite(pdu, true)
	case attOpWriteCmd:
		s.handleWrite(pdu, false)
	case attOpReadByGroupReq:
		s.handleReadByGroupReq(pdu)
	case attOpReadByTypeReq:
		s.handleReadByTypeReq(pdu)

	case attOpHandleNotify:
		s.handleNotify(pdu)
	case attOpHandleInd:
		s.handleIndicate(pdu)
	case attOpHandleCnf:
		// Confirms one of our own outbound indications; nothing further
		// to do.

	default:
		logGATT.Debugf("unhandled att opcode 0x%02X", pdu[0])
	}
}

func (s *gattServer) writePDU(pdu []byte) {
	handle, connected := s.engine.ConnHandle()
	if !connected {
		return
	}
	if err := s.engine.submitAcl(handle, l2capFrame(pdu)); err != nil {
		logGATT.Warnf("att response write failed: %v", err)
	}
}

func (s *gattServer) handleMtuReq(pdu []byte) {
	if len(pdu) < 3 {
		return
	}
	peerMTU := uint16(pdu[1]) | uint16(pdu[2])<<8
	negotiated := peerMTU
	if negotiated < 23 {
		negotiated = 23
	}
	s.mtu = negotiated
	s.writePDU([]byte{attOpMtuResp, byte(s.mtu), byte(s.mtu >> 8)})
}

func (s *gattServer) handleReadReq(pdu []byte) {
	if len(pdu) < 3 {
		s.writePDU(attErrorResp(attOpReadReq, 0, attEcodeInvalidPDU))
		return
	}
	handle := uint16(pdu[1]) | uint16(pdu[2])<<8
	entry, ok := s.db.handleByNumber(handle)
	if !ok {
		s.writePDU(attErrorResp(attOpReadReq, handle, attEcodeInvalidHandle))
		return
	}
	switch entry.kind {
	case kindCharacteristicValue:
		if entry.char.perms&(PermRead|PermReadEnc|PermReadAuthen|PermReadAuthor) == 0 {
			s.writePDU(attErrorResp(attOpReadReq, handle, attEcodeReadNotPerm))
			return
		}
		val := entry.char.Value()
		out := make([]byte, 1+len(val))
		out[0] = attOpReadResp
		copy(out[1:], val)
		s.writePDU(out)
	case kindCCCD:
		val := uint16(entry.char.subscribed)
		s.writePDU([]byte{attOpReadResp, byte(val), byte(val >> 8)})
	default:
		s.writePDU(attErrorResp(attOpReadReq, handle, attEcodeReadNotPerm))
	}
}

func (s *gattServer) handleWrite(pdu []byte, withResponse bool) {
	if len(pdu) < 3 {
		if withResponse {
			s.writePDU(attErrorResp(attOpWriteReq, 0, attEcodeInvalidPDU))
		}
		return
	}
	handle := uint16(pdu[1]) | uint16(pdu[2])<<8
	value := pdu[3:]
	entry, ok := s.db.handleByNumber(handle)
	if !ok {
		if withResponse {
			s.writePDU(attErrorResp(attOpWriteReq, handle, attEcodeInvalidHandle))
		}
		return
	}

	switch entry.kind {
	case kindCharacteristicValue:
		if entry.char.perms&(PermWrite|PermWriteEnc|PermWriteAuthen|PermWriteAuthor) == 0 {
			if withResponse {
				s.writePDU(attErrorResp(attOpWriteReq, handle, attEcodeWriteNotPerm))
			}
			return
		}
		if len(value) > maxValueLen {
			if withResponse {
				s.writePDU(attErrorResp(attOpWriteReq, handle, attEcodeInvalAttrValueLen))
			}
			return
		}
		entry.char.value = append(entry.char.value[:0], value...)

	case kindCCCD:
		if len(value) < 2 {
			if withResponse {
				s.writePDU(attErrorResp(attOpWriteReq, handle, attEcodeInvalidPDU))
			}
			return
		}
		newVal := subscription(uint16(value[0]) | uint16(value[1])<<8)
		entry.char.subscribed = newVal
		if s.handlers != nil && s.handlers.OnSubscriptionChanged != nil {
			s.handlers.OnSubscriptionChanged(SubscriptionChangedEvent{
				CharUUID: entry.char.uuid,
				Notify:   newVal&subscribeNotify != 0,
				Indicate: newVal&subscribeIndicate != 0,
			})
		}

	default:
		if withResponse {
			s.writePDU(attErrorResp(attOpWriteReq, handle, attEcodeWriteNotPerm))
		}
		return
	}

	if withResponse {
		s.writePDU([]byte{attOpWriteResp})
	}
}

// handleReadByGroupReq serves primary-service discovery (UUID 0x2800)
// against the local database.
func (s *gattServer) handleReadByGroupReq(pdu []byte) {
	if len(pdu) < 7 {
		s.writePDU(attErrorResp(attOpReadByGroupReq, 0, attEcodeInvalidPDU))
		return
	}
	start := uint16(pdu[1]) | uint16(pdu[2])<<8
	end := uint16(pdu[3]) | uint16(pdu[4])<<8

	entries := s.db.handleSubrange(start, end)
	var out []byte
	entryLen := 0
	for _, e := range entries {
		if e.kind != kindService || !e.svc.primary {
			continue
		}
		u := e.svc.uuid
		tuple := make([]byte, 4+u.Len())
		tuple[0] = byte(e.svc.declHandle)
		tuple[1] = byte(e.svc.declHandle >> 8)
		tuple[2] = byte(e.svc.endHandle)
		tuple[3] = byte(e.svc.endHandle >> 8)
		copy(tuple[4:], u.b)
		if entryLen == 0 {
			entryLen = len(tuple)
		} else if len(tuple) != entryLen {
			break // can't mix UUID sizes within one response
		}
		out = append(out, tuple...)
	}
	if len(out) == 0 {
		s.writePDU(attErrorResp(attOpReadByGroupReq, start, attEcodeAttrNotFound))
		return
	}
	resp := make([]byte, 2+len(out))
	resp[0] = attOpReadByGroupResp
	resp[1] = byte(entryLen)
	copy(resp[2:], out)
	s.writePDU(resp)
}

// handleReadByTypeReq serves characteristic discovery (UUID 0x2803)
// against the local database.
func (s *gattServer) handleReadByTypeReq(pdu []byte) {
	if len(pdu) < 7 {
		s.writePDU(attErrorResp(attOpReadByTypeReq, 0, attEcodeInvalidPDU))
		return
	}
	start := uint16(pdu[1]) | uint16(pdu[2])<<8
	end := uint16(pdu[3]) | uint16(pdu[4])<<8

	entries := s.db.handleSubrange(start, end)
	var out []byte
	entryLen := 0
	for _, e := range entries {
		if e.kind != kindCharacteristic {
			continue
		}
		u := e.char.uuid
		tuple := make([]byte, 5+u.Len())
		tuple[0] = byte(e.char.declHandle)
		tuple[1] = byte(e.char.declHandle >> 8)
		tuple[2] = e.char.props
		tuple[3] = byte(e.char.valueHandle)
		tuple[4] = byte(e.char.valueHandle >> 8)
		copy(tuple[5:], u.b)
		if entryLen == 0 {
			entryLen = len(tuple)
		} else if len(tuple) != entryLen {
			break
		}
		out = append(out, tuple...)
	}
	if len(out) == 0 {
		s.writePDU(attErrorResp(attOpReadByTypeReq, start, attEcodeAttrNotFound))
		return
	}
	resp := make([]byte, 2+len(out))
	resp[0] = attOpReadByTypeResp
	resp[1] = byte(entryLen)
	copy(resp[2:], out)
	s.writePDU(resp)
}

func (s *gattServer) handleNotify(pdu []byte) {
	handle, value, ok := attParseHandleValue(pdu)
	if !ok {
		return
	}
	if s.handlers != nil && s.handlers.OnNotification != nil {
		s.handlers.OnNotification(NotificationEvent{Handle: handle, Value: value})
	}
}

// handleIndicate confirms the indication before delivering the event,
// per spec.md §4.7's ordering requirement.
func (s *gattServer) handleIndicate(pdu []byte) {
	handle, value, ok := attParseHandleValue(pdu)
	if !ok {
		return
	}
	s.writePDU(attBuildHandleCnf())
	if s.handlers != nil && s.handlers.OnIndication != nil {
		s.handlers.OnIndication(IndicationEvent{Handle: handle, Value: value})
	}
}

// Notify pushes a Handle Value Notification for the named
// characteristic, provided it declares the Notify property and the
// connected peer has subscribed.
func (s *gattServer) Notify(serviceUUID, charUUID UUID, value []byte) error {
	char, err := s.db.FindCharacteristic(serviceUUID, charUUID)
	if err != nil {
		return err
	}
	return s.notifyChar(char, value)
}

// Indicate pushes a Handle Value Indication. The caller does not
// block for the peer's confirmation; spec.md §4.7 treats confirmation
// as an inbound event (attOpHandleCnf), not a synchronous round trip.
func (s *gattServer) Indicate(serviceUUID, charUUID UUID, value []byte) error {
	char, err := s.db.FindCharacteristic(serviceUUID, charUUID)
	if err != nil {
		return err
	}
	return s.indicateChar(char, value)
}

// notifyChar/indicateChar push directly from an already-resolved
// *Characteristic, used by Notify/Indicate above and by notifier.go's
// io.Writer-style streaming helper.
func (s *gattServer) notifyChar(char *Characteristic, value []byte) error {
	if !char.HasProperty(PropNotify) {
		return newErr(ErrInvalidParameters, "characteristic does not support notify")
	}
	if char.subscribed&subscribeNotify == 0 {
		return newErr(ErrInvalidParameters, "peer has not subscribed to notifications")
	}
	handle, connected := s.engine.ConnHandle()
	if !connected {
		return newErr(ErrInvalidParameters, "not connected")
	}
	return s.engine.submitAcl(handle, l2capFrame(attBuildHandleNotify(char.valueHandle, value)))
}

func (s *gattServer) indicateChar(char *Characteristic, value []byte) error {
	if !char.HasProperty(PropIndicate) {
		return newErr(ErrInvalidParameters, "characteristic does not support indicate")
	}
	if char.subscribed&subscribeIndicate == 0 {
		return newErr(ErrInvalidParameters, "peer has not subscribed to indications")
	}
	handle, connected := s.engine.ConnHandle()
	if !connected {
		return newErr(ErrInvalidParameters, "not connected")
	}
	return s.engine.submitAcl(handle, l2capFrame(attBuildHandleInd(char.valueHandle, value)))
}
