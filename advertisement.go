package gatt

import "errors"

// Advertising/EIR data structures (spec.md §4.4): the AD format shared
// by LE advertising packets, scan response packets, and parsed scan
// results. MaxEIRPacketLength bounds every payload GAP builds and
// installs via LE Set Advertising/Scan Response Data.
const MaxEIRPacketLength = 31

// advertising data field types
const (
	typeFlags             = 0x01 // Flags
	typeSomeUUID16        = 0x02 // Incomplete List of 16-bit Service Class UUIDs
	typeAllUUID16         = 0x03 // Complete List of 16-bit Service Class UUIDs
	typeSomeUUID32        = 0x04 // Incomplete List of 32-bit Service Class UUIDs
	typeAllUUID32         = 0x05 // Complete List of 32-bit Service Class UUIDs
	typeSomeUUID128       = 0x06 // Incomplete List of 128-bit Service Class UUIDs
	typeAllUUID128        = 0x07 // Complete List of 128-bit Service Class UUIDs
	typeShortName         = 0x08 // Shortened Local Name
	typeCompleteName      = 0x09 // Complete Local Name
	typeTxPower           = 0x0A // Tx Power Level
	typeServiceSol16      = 0x14 // List of 16-bit Service Solicitation UUIDs
	typeServiceSol32      = 0x1F // List of 32-bit Service Solicitation UUIDs
	typeServiceSol128     = 0x15 // List of 128-bit Service Solicitation UUIDs
	typeServiceData16     = 0x16 // Service Data - 16-bit UUID
	typeServiceData32     = 0x20 // Service Data - 32-bit UUID
	typeServiceData128    = 0x21 // Service Data - 128-bit UUID
	typeManufacturerData  = 0xFF // Manufacturer Specific Data
)

// flag bits
const (
	flagLimitedDiscoverable = 0x01 // LE Limited Discoverable Mode
	flagGeneralDiscoverable = 0x02 // LE General Discoverable Mode
	flagLEOnly              = 0x04 // BR/EDR Not Supported
	flagBothController      = 0x08 // Simultaneous LE and BR/EDR to Same Device Capable (Controller)
	flagBothHost            = 0x10 // Simultaneous LE and BR/EDR to Same Device Capable (Host)
)

// ServiceData is one decoded Service Data AD structure: data associated
// with a specific service UUID, carried alongside it in the same
// advertising or scan response packet.
type ServiceData struct {
	UUID UUID
	Data []byte
}

// Advertisement is a parsed advertising or scan response payload
// (spec.md §4.4's scan result reporting). GAPLayer.reportAdvertising
// parses each incoming report into one of these before delivering
// Handlers.OnScanResult.
type Advertisement struct {
	LocalName        string
	ManufacturerData []byte
	ServiceData      []ServiceData
	Services         []UUID
	TxPowerLevel     int
	SolicitedService []UUID
}

// Unmarshall decodes a sequence of [len][type][data...] AD structures
// into a, tolerating and logging any structure type it doesn't model.
func (a *Advertisement) Unmarshall(b []byte) error {
	for len(b) > 0 {
		if len(b) < 2 {
			return errors.New("invalid advertise data")
		}
		l, t := b[0], b[1]
		if len(b) < int(1+l) {
			return errors.New("invalid advertise data")
		}
		d := b[2 : 1+l]
		switch t {
		case typeFlags:
			// Discoverability mode isn't modeled on the scanning side.
		case typeSomeUUID16, typeAllUUID16:
			a.Services = uuidList(a.Services, d, 2)
		case typeSomeUUID32, typeAllUUID32:
			a.Services = uuidList(a.Services, d, 4)
		case typeSomeUUID128, typeAllUUID128:
			a.Services = uuidList(a.Services, d, 16)
		case typeShortName, typeCompleteName:
			a.LocalName = string(d)
		case typeTxPower:
			if len(d) >= 1 {
				a.TxPowerLevel = int(int8(d[0]))
			}
		case typeServiceSol16:
			a.SolicitedService = uuidList(a.SolicitedService, d, 2)
		case typeServiceSol32:
			a.SolicitedService = uuidList(a.SolicitedService, d, 4)
		case typeServiceSol128:
			a.SolicitedService = uuidList(a.SolicitedService, d, 16)
		case typeServiceData16:
			a.ServiceData = appendServiceData(a.ServiceData, d, 2)
		case typeServiceData32:
			a.ServiceData = appendServiceData(a.ServiceData, d, 4)
		case typeServiceData128:
			a.ServiceData = appendServiceData(a.ServiceData, d, 16)
		case typeManufacturerData:
			a.ManufacturerData = append([]byte(nil), d...)
		default:
			logGAP.Debugf("unhandled advertising data type 0x%02X: % X", t, d)
		}
		b = b[1+l:]
	}
	return nil
}

func uuidList(u []UUID, d []byte, w int) []UUID {
	for len(d) >= w {
		u = append(u, UUID{b: append([]byte(nil), d[:w]...)})
		d = d[w:]
	}
	return u
}

// appendServiceData splits d into a w-byte UUID and the remaining
// service-specific payload.
func appendServiceData(sd []ServiceData, d []byte, w int) []ServiceData {
	if len(d) < w {
		return sd
	}
	return append(sd, ServiceData{
		UUID: UUID{b: append([]byte(nil), d[:w]...)},
		Data: append([]byte(nil), d[w:]...),
	})
}

// nameScanResponsePacket builds a scan response payload carrying just
// the device name, truncating to fit if necessary (GAPLayer.SetScanResponseName).
func nameScanResponsePacket(name string) []byte {
	scan := new(advPacket)
	scan.appendName(name)
	return scan.data
}

// serviceAdvertisingPacket builds an advertising payload carrying the
// Flags field plus as many of uu as fit, skipping the mandatory GAP
// and GATT services (GAPLayer.AdvertiseServices). Returns the payload
// and the subset of uu that fit.
func serviceAdvertisingPacket(uu []UUID) ([]byte, []UUID) {
	fit := make([]UUID, 0, len(uu))
	adv := new(advPacket)
	adv.appendFlags(flagGeneralDiscoverable | flagLEOnly)
	for _, u := range uu {
		if u.Equal(gatAttrGAPUUID) || u.Equal(gatAttrGATTUUID) {
			continue
		}
		if adv.appendUUIDFit(u) {
			fit = append(fit, u)
		}
	}
	return adv.data, fit
}

// advPacket accumulates AD structures for an outbound advertising or
// scan response payload (spec.md §4.4). GAPLayer uses this to build
// the Flags/Local Name/Manufacturer Data/service-UUID fields it
// installs via LE Set Advertising Data and LE Set Scan Response Data.
type advPacket struct {
	data []byte
}

// appendField appends one [len][typ][data] AD structure, silently
// refusing if doing so would exceed MaxEIRPacketLength.
func (p *advPacket) appendField(typ byte, data []byte) *advPacket {
	if len(p.data)+len(data)+2 > MaxEIRPacketLength {
		return p
	}
	p.data = append(p.data, byte(len(data)+1))
	p.data = append(p.data, typ)
	p.data = append(p.data, data...)
	return p
}

func (p *advPacket) appendFlags(f byte) *advPacket {
	return p.appendField(typeFlags, []byte{f})
}

// appendName appends the device's local name, falling back to the
// Shortened Local Name type and truncating if the full name wouldn't
// fit in what's left of the packet.
func (p *advPacket) appendName(n string) *advPacket {
	typ := byte(typeCompleteName)
	if room := MaxEIRPacketLength - len(p.data) - 2; len(n) > room {
		n = n[:max(room, 0)]
		typ = typeShortName
	}
	return p.appendField(typ, []byte(n))
}

func (p *advPacket) appendManufacturerData(id uint16, data []byte) *advPacket {
	d := append([]byte{byte(id), byte(id >> 8)}, data...)
	return p.appendField(typeManufacturerData, d)
}

// appendUUIDFit appends a 16- or 128-bit service UUID field if it
// fits in the packet, and reports whether it fit. Uses the "some"
// (incomplete list) type since the caller may be advertising only a
// subset of its registered services.
func (p *advPacket) appendUUIDFit(u UUID) bool {
	if len(p.data)+u.Len()+2 > MaxEIRPacketLength {
		return false
	}
	switch u.Len() {
	case 2:
		p.appendField(typeSomeUUID16, u.b)
	case 16:
		p.appendField(typeSomeUUID128, u.b)
	}
	return true
}
