package gatt

// This file includes constants from the BLE spec. The ATT opcode and
// error-code constants, and the attRespFor request/response map, live
// in att.go alongside the PDU builders/parsers that use them.

var (
	gatAttrGAPUUID  = UUID16(0x1800)
	gatAttrGATTUUID = UUID16(0x1801)

	gattAttrPrimaryServiceUUID   = UUID16(0x2800)
	gattAttrSecondaryServiceUUID = UUID16(0x2801)
	gattAttrIncludeUUID          = UUID16(0x2802)
	gattAttrCharacteristicUUID   = UUID16(0x2803)

	gattAttrClientCharacteristicConfigUUID = UUID16(0x2902)
	gattAttrServerCharacteristicConfigUUID = UUID16(0x2903)

	gattAttrDeviceNameUUID = UUID16(0x2A00)
	gattAttrAppearanceUUID = UUID16(0x2A01)
)

// https://developer.bluetooth.org/gatt/characteristics/Pages/CharacteristicViewer.aspx?u=org.bluetooth.characteristic.gap.appearance.xml
var gapCharAppearanceGenericComputer = []byte{0x00, 0x80}

const gattCCCNotifyFlag = 1
const gattCCCIndicateFlag = 2

// HCI packet type tags (wire.go), spec.md §4.1.
const (
	pktTypeCommand         = 0x01
	pktTypeACLData         = 0x02
	pktTypeSyncData        = 0x03
	pktTypeEvent           = 0x04
	pktTypeExtendedCommand = 0x09
)

// HCI event codes, spec.md §6.
const (
	evtDisconnectionComplete  = 0x05
	evtEncryptionChange       = 0x08
	evtCommandComplete        = 0x0E
	evtCommandStatus          = 0x0F
	evtHardwareError          = 0x10
	evtNumberOfCompletedPkts  = 0x13
	evtLEMeta                 = 0x3E
)

// LE meta sub-event codes, spec.md §6.
const (
	subEvtConnectionComplete         = 0x01
	subEvtAdvertisingReport          = 0x02
	subEvtConnectionUpdateComplete   = 0x03
	subEvtEnhancedConnectionComplete = 0x0A
)

// opcode splits an HCI opcode into its 10-bit OCF and 6-bit OGF per
// spec.md §3/§9 ("tagged type with from_raw/to_raw helpers").
type opcode uint16

func newOpcode(ogf uint8, ocf uint16) opcode {
	return opcode((uint16(ogf) << 10) | (ocf & 0x03FF))
}

func (op opcode) ocf() uint16 { return uint16(op) & 0x03FF }
func (op opcode) ogf() uint8  { return uint8(uint16(op) >> 10) }

// OGF groups, spec.md §6.
const (
	ogfLinkControl   = 0x01
	ogfHostControl   = 0x03
	ogfInfoParams    = 0x04
	ogfLEControl     = 0x08
	ogfVendorSpecific = 0x3F
)

// Host-side command set, spec.md §6.
const (
	opReset                       = opcode(0x0C03)
	opWriteLocalName              = opcode(0x0C13)
	opReadLocalVersionInformation = opcode(0x1001)
	opReadBdAddr                  = opcode(0x1009)
	opDisconnect                  = opcode(0x0406)
	opReadRemoteVersionInfo       = opcode(0x041D)

	opLESetEventMask             = opcode(0x2001)
	opLESetRandomAddress         = opcode(0x2005)
	opLESetAdvertisingParameters = opcode(0x2006)
	opLESetAdvertisingData       = opcode(0x2008)
	opLESetScanResponseData      = opcode(0x2009)
	opLESetAdvertiseEnable       = opcode(0x200A)
	opLESetScanParameters        = opcode(0x200B)
	opLESetScanEnable            = opcode(0x200C)
	opLECreateConnection         = opcode(0x200D)
	opLEConnectionUpdate         = opcode(0x2013)

	opBcmWriteBdAddr         = opcode(0xFC01)
	opBcmDownloadMinidriver  = opcode(0xFC2E)
	opBcmLaunchRam           = opcode(0xFC4E)
	opBcmUpdateUartBaudRate  = opcode(0xFC18)
	opBcmUpdateBaudrate      = opcode(0xFC77)
)

func (op opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "Unknown"
}

var opcodeNames = map[opcode]string{
	opReset:                       "Reset",
	opWriteLocalName:              "WriteLocalName",
	opReadLocalVersionInformation: "ReadLocalVersionInformation",
	opReadBdAddr:                  "ReadBdAddr",
	opDisconnect:                  "Disconnect",
	opReadRemoteVersionInfo:       "ReadRemoteVersionInformation",
	opLESetEventMask:              "LESetEventMask",
	opLESetRandomAddress:          "LESetRandomAddress",
	opLESetAdvertisingParameters:  "LESetAdvertisingParameters",
	opLESetAdvertisingData:        "LESetAdvertisingData",
	opLESetScanResponseData:       "LESetScanResponseData",
	opLESetAdvertiseEnable:        "LESetAdvertiseEnable",
	opLESetScanParameters:         "LESetScanParameters",
	opLESetScanEnable:             "LESetScanEnable",
	opLECreateConnection:          "LECreateConnection",
	opLEConnectionUpdate:          "LEConnectionUpdate",
	opBcmWriteBdAddr:              "BcmWriteBdAddr",
	opBcmDownloadMinidriver:       "BcmDownloadMinidriver",
	opBcmLaunchRam:                "BcmLaunchRam",
	opBcmUpdateUartBaudRate:       "BcmUpdateUartBaudRate",
	opBcmUpdateBaudrate:           "BcmUpdateBaudrate",
}

// Disconnect reason codes.
const reasonRemoteUserTerminated = 0x13
