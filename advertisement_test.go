package gatt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvPacket_AppendField(t *testing.T) {
	p := new(advPacket)
	p.appendField(typeFlags, []byte{flagGeneralDiscoverable | flagLEOnly})
	require.Equal(t, []byte{0x02, 0x01, 0x06}, p.data)
}

func TestAdvPacket_AppendUUIDFit(t *testing.T) {
	p := new(advPacket)
	ok := p.appendUUIDFit(UUID16(0x180F))
	require.True(t, ok)
	require.Equal(t, []byte{0x03, typeSomeUUID16, 0x0F, 0x18}, p.data)
}

func TestAdvPacket_AppendUUIDFit_RejectsWhenFull(t *testing.T) {
	p := new(advPacket)
	p.data = make([]byte, MaxEIRPacketLength-1)
	ok := p.appendUUIDFit(UUID16(0x180F))
	require.False(t, ok)
}

func TestNameScanResponsePacket_ShortName(t *testing.T) {
	data := nameScanResponsePacket("abc")
	require.Equal(t, []byte{0x04, typeCompleteName, 'a', 'b', 'c'}, data)
}

func TestNameScanResponsePacket_TruncatesLongName(t *testing.T) {
	name := ""
	for i := 0; i < 40; i++ {
		name += "x"
	}
	data := nameScanResponsePacket(name)
	require.Equal(t, byte(typeShortName), data[1])
	require.LessOrEqual(t, len(data), MaxEIRPacketLength)
}

func TestServiceAdvertisingPacket_SkipsGAPAndGATTServices(t *testing.T) {
	data, fit := serviceAdvertisingPacket([]UUID{gatAttrGAPUUID, gatAttrGATTUUID, UUID16(0x180F)})
	require.Len(t, fit, 1)
	require.True(t, fit[0].Equal(UUID16(0x180F)))
	require.NotEmpty(t, data)
}

func TestAdvertisement_Unmarshall(t *testing.T) {
	b := []byte{
		0x02, typeFlags, flagGeneralDiscoverable,
		0x04, typeCompleteName, 'f', 'o', 'o',
	}
	var a Advertisement
	require.NoError(t, a.Unmarshall(b))
	require.Equal(t, "foo", a.LocalName)
}

func TestAdvertisement_Unmarshall_TruncatedField(t *testing.T) {
	var a Advertisement
	err := a.Unmarshall([]byte{0x05, typeFlags})
	require.Error(t, err)
}

func TestAdvertisement_Unmarshall_ManufacturerData(t *testing.T) {
	b := []byte{0x03, typeManufacturerData, 0xAA, 0xBB}
	var a Advertisement
	require.NoError(t, a.Unmarshall(b))
	require.Equal(t, []byte{0xAA, 0xBB}, a.ManufacturerData)
}

func TestAdvertisement_Unmarshall_ServiceData16(t *testing.T) {
	b := []byte{0x05, typeServiceData16, 0x0F, 0x18, 0x01, 0x02}
	var a Advertisement
	require.NoError(t, a.Unmarshall(b))
	require.Len(t, a.ServiceData, 1)
	require.True(t, a.ServiceData[0].UUID.Equal(UUID16(0x180F)))
	require.Equal(t, []byte{0x01, 0x02}, a.ServiceData[0].Data)
}

func TestAdvPacket_AppendManufacturerData(t *testing.T) {
	p := new(advPacket)
	p.appendManufacturerData(0x004C, []byte{0x01, 0x02})
	require.Equal(t, []byte{0x05, typeManufacturerData, 0x4C, 0x00, 0x01, 0x02}, p.data)
}
