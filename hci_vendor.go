package gatt

import "encoding/binary"

// VersionInfo is the parsed return of ReadLocalVersionInformation
// (spec.md §4.3 get_module_status).
type VersionInfo struct {
	HCIVersion      uint8
	HCIRevision     uint16
	LMPVersion      uint8
	ManufacturerID  uint16
	LMPSubversion   uint16
}

// reset submits the Reset command and blocks until the matching
// Command Complete moves state back to Ready (spec.md §4.3).
func (e *hciEngine) reset() error {
	_, err := e.submitCommand(Command{Opcode: opReset})
	return err
}

// setEventMask programs the HCI event mask (spec.md §4.3).
func (e *hciEngine) setEventMask(mask uint64) error {
	params := make([]byte, 8)
	binary.LittleEndian.PutUint64(params, mask)
	_, err := e.submitCommand(Command{Opcode: opLESetEventMask, Params: params})
	return err
}

// setBtAddr writes the controller's Bluetooth address. Per spec.md
// §4.3, address writes send the 6 bytes in reverse order (vendor
// command byte order).
func (e *hciEngine) setBtAddr(addr Address) error {
	params := reverse(addr[:])
	_, err := e.submitCommand(Command{Opcode: opBcmWriteBdAddr, Params: params})
	if err != nil {
		return err
	}
	e.localAddr = addr
	return nil
}

// getBtAddr issues ReadBdAddr and returns the controller's address.
// Implementations MUST copy exactly 6 bytes (spec.md §9: a prior
// revision copied sizeof(pointer) bytes as a bug; not reproduced here).
func (e *hciEngine) getBtAddr() (Address, error) {
	ret, err := e.submitCommand(Command{Opcode: opReadBdAddr})
	if err != nil {
		return Address{}, err
	}
	// ReadBdAddr's return parameters are [status][addr(6)]; status is
	// stripped by handleCommandComplete, so ret is just the address
	// here when the submit succeeded. The wire order is reversed into
	// Address's display order.
	var addr Address
	if len(ret) < 6 {
		return Address{}, newErr(ErrInvalidEvent, "short read bd addr response")
	}
	copy(addr[:], reverse(ret[:6]))
	e.localAddr = addr
	return addr, nil
}

// setLocalName sends WriteLocalName with name padded to 248 bytes
// (spec.md §4.4).
func (e *hciEngine) setLocalName(name string) error {
	const fieldLen = 248
	params := make([]byte, fieldLen)
	copy(params, name)
	_, err := e.submitCommand(Command{Opcode: opWriteLocalName, Params: params})
	if err != nil {
		return err
	}
	e.localName = name
	return nil
}

// getModuleStatus issues ReadLocalVersionInformation and parses the
// version fields at the offsets spec.md §4.3 specifies (offsets into
// the return parameters: 0,1-2,3,4-5,6-7 after stripping the leading
// status byte already consumed by handleCommandComplete).
func (e *hciEngine) getModuleStatus() (VersionInfo, error) {
	ret, err := e.submitCommand(Command{Opcode: opReadLocalVersionInformation})
	if err != nil {
		return VersionInfo{}, err
	}
	if len(ret) < 8 {
		return VersionInfo{}, newErr(ErrInvalidEvent, "short read local version response")
	}
	return VersionInfo{
		HCIVersion:     ret[0],
		HCIRevision:    uint16(ret[1]) | uint16(ret[2])<<8,
		LMPVersion:     ret[3],
		ManufacturerID: uint16(ret[4]) | uint16(ret[5])<<8,
		LMPSubversion:  uint16(ret[6]) | uint16(ret[7])<<8,
	}, nil
}

// bcmSetBaudrate issues the Broadcom vendor baud-rate change command.
// useVendorUpdate selects UpdateBaudrate (0xFC77, post-firmware-download)
// over UpdateUartBaudRate (0xFC18, ROM bootloader), per SPEC_FULL.md §5
// (spec.md names bcm_set_baudrate without specifying which opcode
// applies at which boot stage; original_source's two distinct vendor
// opcodes resolve that).
func (e *hciEngine) bcmSetBaudrate(baud uint32, useVendorUpdate bool) error {
	params := make([]byte, 6)
	binary.LittleEndian.PutUint32(params[0:4], baud)
	op := opBcmUpdateUartBaudRate
	if useVendorUpdate {
		op = opBcmUpdateBaudrate
	}
	_, err := e.submitCommand(Command{Opcode: op, Params: params})
	return err
}
