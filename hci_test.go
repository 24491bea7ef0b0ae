package gatt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEngine() (*hciEngine, *fakeTransport) {
	tr := &fakeTransport{}
	cfg := Config{
		Transport:      tr,
		Clock:          &fakeClock{},
		CommandTimeout: 200 * time.Millisecond,
	}
	return newHciEngine(cfg.withDefaults()), tr
}

func TestEngine_SubmitCommandRoundTrip(t *testing.T) {
	e, tr := newTestEngine()

	done := make(chan struct{})
	var gotParams []byte
	go func() {
		var err error
		gotParams, err = e.submitCommand(Command{Opcode: opReset})
		require.NoError(t, err)
		close(done)
	}()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)
	feedEvent(e, commandCompletePacket(opReset, 0, nil))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitCommand did not return")
	}
	require.Empty(t, gotParams)
	require.Equal(t, StateReady, e.State())
}

// TestEngine_OneCommandInFlight covers invariant 4 (spec.md §8): a
// second submitCommand call blocks until the first's rendezvous
// completes, and waitingResponse is false once submitCommand returns.
func TestEngine_OneCommandInFlight(t *testing.T) {
	e, tr := newTestEngine()

	var wg sync.WaitGroup
	var order []int
	var mu sync.Mutex

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = e.submitCommand(Command{Opcode: opReset})
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	}()

	require.Eventually(t, func() bool { return tr.count() == 1 }, time.Second, time.Millisecond)

	go func() {
		defer wg.Done()
		_, _ = e.submitCommand(Command{Opcode: opLESetEventMask})
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	}()

	// Give the second goroutine a chance to run; it must not have
	// written its command yet, since the first rendezvous is still open.
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, tr.count())

	feedEvent(e, commandCompletePacket(opReset, 0, nil))
	require.Eventually(t, func() bool { return tr.count() == 2 }, time.Second, time.Millisecond)
	feedEvent(e, commandCompletePacket(opLESetEventMask, 0, nil))

	wg.Wait()
	require.Equal(t, []int{1, 2}, order)

	e.fieldsMu.Lock()
	waiting := e.waitingResponse
	e.fieldsMu.Unlock()
	require.False(t, waiting)
}

func TestEngine_SubmitCommandTimeout(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.submitCommand(Command{Opcode: opReset})
	require.Error(t, err)

	e.fieldsMu.Lock()
	waiting := e.waitingResponse
	e.fieldsMu.Unlock()
	require.False(t, waiting)
}

func TestEngine_OnRxByte_ReassertsFlowControlAfterOverrunResync(t *testing.T) {
	e, tr := newTestEngine()

	// An event header declaring more payload than the buffer can ever
	// hold (header 3 bytes + 255 params = 258 > rxBufferSize) so the
	// buffer fills without ever completing a packet on its own.
	e.OnRxByte(pktTypeEvent)
	e.OnRxByte(0x01)
	e.OnRxByte(0xFF)
	for i := 0; i < rxBufferSize-3; i++ {
		e.OnRxByte(0xBB)
	}
	require.Equal(t, 0, e.framer.freeSpace())
	require.Equal(t, []bool{false}, tr.fcEvents)

	// One more byte overruns, forcing a resync that frees the buffer;
	// flow control must be reasserted in the same call.
	e.OnRxByte(0xBB)
	require.Equal(t, []bool{false, true}, tr.fcEvents)
	require.Equal(t, rxBufferSize, e.framer.freeSpace())
}

func TestEngine_OnRxByte_ReassertsFlowControlAfterCompletePacket(t *testing.T) {
	e, tr := newTestEngine()
	e.flowControlOff = true // simulate a prior buffer-full deassertion

	feedEvent(e, commandCompletePacket(opReset, 0, nil))

	require.Equal(t, []bool{true}, tr.fcEvents)
	require.False(t, e.flowControlOff)
}
