package gatt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleLEConnectionComplete_PopulatesPeerAddress(t *testing.T) {
	e, _ := newTestEngine()

	var gotHandle uint16
	var gotConnected bool
	e.onGAPConn = func(handle uint16, connected bool) { gotHandle = handle; gotConnected = connected }

	// status=0, handle=0x0001, role=0x00 (master), peer_addr_type=0x00,
	// peer_addr=AA:BB:CC:DD:EE:FF on the wire (little-endian, LSO first).
	params := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}
	e.handleLEConnectionComplete(params)

	require.True(t, gotConnected)
	require.Equal(t, uint16(1), gotHandle)

	rec, connected := e.Connection()
	require.True(t, connected)
	require.Equal(t, Address{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, rec.peerAddr)
	require.Equal(t, StateConnected, e.State())
}

func TestHandleLEConnectionComplete_FailureClearsConnection(t *testing.T) {
	e, _ := newTestEngine()
	e.setConn(connRecord{handle: 1, connected: true})

	params := []byte{0x01, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}
	e.handleLEConnectionComplete(params)

	_, connected := e.Connection()
	require.False(t, connected)
	require.Equal(t, StateReady, e.State())
}

func TestHandleDisconnectionComplete_ClearsActiveConnection(t *testing.T) {
	e, _ := newTestEngine()
	e.setConn(connRecord{handle: 1, connected: true})

	var gotConnected bool
	e.onGAPConn = func(handle uint16, connected bool) { gotConnected = connected }

	e.handleDisconnectionComplete([]byte{0x00, 0x01, 0x00, 0x13})

	_, connected := e.Connection()
	require.False(t, connected)
	require.False(t, gotConnected)
}

func TestHandleLEMeta_RoutesConnectionComplete(t *testing.T) {
	e, _ := newTestEngine()
	params := append([]byte{subEvtConnectionComplete},
		0x00, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA)

	var sawSub byte
	e.onLEEvent = func(sub byte, rest []byte) { sawSub = sub }
	e.handleLEMeta(params)

	require.Equal(t, byte(subEvtConnectionComplete), sawSub)
	_, connected := e.Connection()
	require.True(t, connected)
}
