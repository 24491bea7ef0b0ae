package gatt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFramer_ResetEventScenario(t *testing.T) {
	var got []Event
	f := newFramer(func(e Event) { got = append(got, e) }, func(AclPacket) {})

	for _, b := range []byte{0x04, 0x0E, 0x04, 0x01, 0x03, 0x0C, 0x00} {
		f.onByte(b)
	}

	require.Len(t, got, 1)
	require.Equal(t, byte(0x0E), got[0].Code)
	require.Equal(t, []byte{0x01, 0x03, 0x0C, 0x00}, got[0].Params)
}

// TestFramer_ByteAtATimeMatchesBulkDecode covers invariant 3 (spec.md
// §8): feeding a stream of concatenated HCI packets one byte at a time
// produces the same sequence of decoded packets as slicing and
// decoding the stream directly.
func TestFramer_ByteAtATimeMatchesBulkDecode(t *testing.T) {
	stream := []byte{
		0x04, 0x0E, 0x04, 0x01, 0x03, 0x0C, 0x00, // event
		0x02, 0x01, 0x20, 0x04, 0x00, 0xAA, 0xBB, 0xCC, 0xDD, // acl
		0x04, 0x0F, 0x04, 0x00, 0x01, 0x03, 0x0C, // event
	}

	var wantEvents []Event
	var wantAcls []AclPacket
	for i := 0; i < len(stream); {
		switch stream[i] {
		case pktTypeEvent:
			ev, err := DecodeEvent(stream[i:])
			require.NoError(t, err)
			wantEvents = append(wantEvents, ev)
			i += 3 + len(ev.Params)
		case pktTypeACLData:
			a, err := DecodeAcl(stream[i:])
			require.NoError(t, err)
			wantAcls = append(wantAcls, a)
			i += 5 + len(a.Data)
		}
	}

	var gotEvents []Event
	var gotAcls []AclPacket
	f := newFramer(
		func(e Event) { gotEvents = append(gotEvents, e) },
		func(a AclPacket) { gotAcls = append(gotAcls, a) },
	)
	for _, b := range stream {
		f.onByte(b)
	}

	require.Equal(t, wantEvents, gotEvents)
	require.Equal(t, wantAcls, gotAcls)
}

func TestFramer_UnknownTypeByteResyncs(t *testing.T) {
	var events int
	f := newFramer(func(Event) { events++ }, func(AclPacket) {})

	f.onByte(0xFF) // unknown type, discarded
	for _, b := range []byte{0x04, 0x0E, 0x01, 0x00} {
		f.onByte(b)
	}
	require.Equal(t, 1, events)
}

func TestFramer_FreeSpace(t *testing.T) {
	f := newFramer(func(Event) {}, func(AclPacket) {})
	require.Equal(t, rxBufferSize, f.freeSpace())
	f.onByte(0x04)
	require.Equal(t, rxBufferSize-1, f.freeSpace())
}
