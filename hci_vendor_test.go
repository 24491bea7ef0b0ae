package gatt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEngine_Reset(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan error, 1)
	go func() { done <- e.reset() }()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	feedEvent(e, commandCompletePacket(opReset, 0, nil))
	require.NoError(t, <-done)
}

func TestEngine_SetEventMask(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan error, 1)
	go func() { done <- e.setEventMask(0x1FFFFFFFFFF) }()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	cmd, err := DecodeCommand(tr.last())
	require.NoError(t, err)
	require.Equal(t, opLESetEventMask, cmd.Opcode)
	require.Len(t, cmd.Params, 8)

	feedEvent(e, commandCompletePacket(opLESetEventMask, 0, nil))
	require.NoError(t, <-done)
}

func TestEngine_SetBtAddr(t *testing.T) {
	e, tr := newTestEngine()
	addr := Address{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	done := make(chan error, 1)
	go func() { done <- e.setBtAddr(addr) }()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	cmd, err := DecodeCommand(tr.last())
	require.NoError(t, err)
	require.Equal(t, opBcmWriteBdAddr, cmd.Opcode)
	require.Equal(t, []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}, cmd.Params)

	feedEvent(e, commandCompletePacket(opBcmWriteBdAddr, 0, nil))
	require.NoError(t, <-done)
	require.Equal(t, addr, e.localAddr)
}

func TestEngine_GetBtAddr(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan Address, 1)
	errc := make(chan error, 1)
	go func() {
		a, err := e.getBtAddr()
		done <- a
		errc <- err
	}()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	feedEvent(e, commandCompletePacket(opReadBdAddr, 0, []byte{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA}))

	require.NoError(t, <-errc)
	require.Equal(t, Address{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, <-done)
}

func TestEngine_GetBtAddr_ShortResponse(t *testing.T) {
	e, tr := newTestEngine()

	errc := make(chan error, 1)
	go func() {
		_, err := e.getBtAddr()
		errc <- err
	}()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	feedEvent(e, commandCompletePacket(opReadBdAddr, 0, []byte{0x01, 0x02}))

	require.Error(t, <-errc)
}

func TestEngine_SetLocalName(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan error, 1)
	go func() { done <- e.setLocalName("my-device") }()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	cmd, err := DecodeCommand(tr.last())
	require.NoError(t, err)
	require.Len(t, cmd.Params, 248)
	require.Equal(t, "my-device", string(cmd.Params[:9]))

	feedEvent(e, commandCompletePacket(opWriteLocalName, 0, nil))
	require.NoError(t, <-done)
	require.Equal(t, "my-device", e.localName)
}

func TestEngine_GetModuleStatus(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan VersionInfo, 1)
	errc := make(chan error, 1)
	go func() {
		v, err := e.getModuleStatus()
		done <- v
		errc <- err
	}()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	ret := []byte{0x09, 0x34, 0x12, 0x06, 0x0F, 0x00, 0x01, 0x00}
	feedEvent(e, commandCompletePacket(opReadLocalVersionInformation, 0, ret))

	require.NoError(t, <-errc)
	v := <-done
	require.Equal(t, uint8(0x09), v.HCIVersion)
	require.Equal(t, uint16(0x1234), v.HCIRevision)
	require.Equal(t, uint8(0x06), v.LMPVersion)
	require.Equal(t, uint16(0x000F), v.ManufacturerID)
	require.Equal(t, uint16(0x0001), v.LMPSubversion)
}

func TestEngine_BcmSetBaudrate_SelectsOpcode(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan error, 1)
	go func() { done <- e.bcmSetBaudrate(3000000, false) }()
	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	cmd, err := DecodeCommand(tr.last())
	require.NoError(t, err)
	require.Equal(t, opBcmUpdateUartBaudRate, cmd.Opcode)
	feedEvent(e, commandCompletePacket(opBcmUpdateUartBaudRate, 0, nil))
	require.NoError(t, <-done)

	go func() { done <- e.bcmSetBaudrate(3000000, true) }()
	require.Eventually(t, func() bool { return tr.count() == 2 }, time.Second, time.Millisecond)
	cmd, err = DecodeCommand(tr.last())
	require.NoError(t, err)
	require.Equal(t, opBcmUpdateBaudrate, cmd.Opcode)
	feedEvent(e, commandCompletePacket(opBcmUpdateBaudrate, 0, nil))
	require.NoError(t, <-done)
}
