package gatt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandEncode_ResetScenario(t *testing.T) {
	cmd := Command{Opcode: opReset}
	buf := make([]byte, cmd.encodedLen())
	n, err := cmd.Encode(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x03, 0x0C, 0x00}, buf[:n])
}

func TestCommandRoundTrip(t *testing.T) {
	cases := []Command{
		{Opcode: opReset},
		{Opcode: opLESetEventMask, Params: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{Opcode: opBcmWriteBdAddr, Params: make([]byte, 255)},
	}
	for _, c := range cases {
		buf := make([]byte, c.encodedLen())
		n, err := c.Encode(buf)
		require.NoError(t, err)

		got, err := DecodeCommand(buf[:n])
		require.NoError(t, err)
		require.Equal(t, c.Opcode, got.Opcode)
		require.Equal(t, c.Params, got.Params)
	}
}

func TestCommandEncode_ParamsTooLong(t *testing.T) {
	c := Command{Opcode: opReset, Params: make([]byte, 256)}
	_, err := c.Encode(make([]byte, c.encodedLen()))
	require.Error(t, err)
}

func TestAclRoundTrip(t *testing.T) {
	cases := []AclPacket{
		{Handle: 0x0001, PB: 0x2, BC: 0x0, Data: []byte{0x04, 0x00, 0x04, 0x00, 0x1B, 0x03, 0x00, 0xAA, 0xBB}},
		{Handle: 0x0FFF, PB: 0x0, BC: 0x3, Data: nil},
	}
	for _, a := range cases {
		buf := make([]byte, a.encodedLen())
		n, err := a.Encode(buf)
		require.NoError(t, err)

		got, err := DecodeAcl(buf[:n])
		require.NoError(t, err)
		require.Equal(t, a.Handle, got.Handle)
		require.Equal(t, a.PB, got.PB)
		require.Equal(t, a.BC, got.BC)
		require.Equal(t, a.Data, got.Data)
	}
}

func TestEventDecode(t *testing.T) {
	ev, err := DecodeEvent([]byte{0x04, 0x0E, 0x04, 0x01, 0x03, 0x0C, 0x00})
	require.NoError(t, err)
	require.Equal(t, byte(0x0E), ev.Code)
	require.Equal(t, []byte{0x01, 0x03, 0x0C, 0x00}, ev.Params)
}

func TestEventIsLEMeta(t *testing.T) {
	ev := Event{Code: evtLEMeta, Params: []byte{0x01, 0xAA}}
	sub, ok := ev.IsLEMeta()
	require.True(t, ok)
	require.Equal(t, byte(0x01), sub)

	_, ok = Event{Code: evtCommandComplete, Params: []byte{0x01}}.IsLEMeta()
	require.False(t, ok)
}

func TestMsToUnits(t *testing.T) {
	cases := map[int]uint16{
		20:    32,
		100:   160,
		1000:  1600,
		10240: 16384,
	}
	for ms, want := range cases {
		require.Equal(t, want, msToUnits(ms), "ms=%d", ms)
	}
}
