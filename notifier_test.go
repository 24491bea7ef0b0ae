package gatt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifier_WriteSendsNotification(t *testing.T) {
	s, _, tr, _ := newTestServer()
	svc, err := s.db.RegisterService(UUID16(0x180F), true)
	require.NoError(t, err)
	char, err := s.db.AddCharacteristic(svc.UUID(), UUID16(0x2A19), PropRead|PropNotify, PermRead, []byte{0x64}, 1)
	require.NoError(t, err)
	char.subscribed = subscribeNotify

	n := NewNotifier(s, char, false, maxValueLen)
	nn, err := n.Write([]byte{0xAA, 0xBB})
	require.NoError(t, err)
	require.Equal(t, 2, nn)
	require.Equal(t, []byte{0x1B, 0x03, 0x00, 0xAA, 0xBB}, lastATTPDU(t, tr))
}

func TestNotifier_WriteSendsIndication(t *testing.T) {
	s, _, tr, _ := newTestServer()
	svc, err := s.db.RegisterService(UUID16(0x180F), true)
	require.NoError(t, err)
	char, err := s.db.AddCharacteristic(svc.UUID(), UUID16(0x2A19), PropRead|PropIndicate, PermRead, []byte{0x64}, 1)
	require.NoError(t, err)
	char.subscribed = subscribeIndicate

	n := NewNotifier(s, char, true, maxValueLen)
	_, err = n.Write([]byte{0xDE, 0xAD})
	require.NoError(t, err)
	require.Equal(t, []byte{0x1D, 0x03, 0x00, 0xDE, 0xAD}, lastATTPDU(t, tr))
}

func TestNotifier_WriteAfterStopFails(t *testing.T) {
	s, _, _, _ := newTestServer()
	svc, err := s.db.RegisterService(UUID16(0x180F), true)
	require.NoError(t, err)
	char, err := s.db.AddCharacteristic(svc.UUID(), UUID16(0x2A19), PropRead|PropNotify, PermRead, []byte{0x64}, 1)
	require.NoError(t, err)
	char.subscribed = subscribeNotify

	n := NewNotifier(s, char, false, maxValueLen)
	n.stop()

	_, err = n.Write([]byte{0x01})
	require.Error(t, err)
	require.True(t, n.Done())
}

func TestNotifier_Cap(t *testing.T) {
	n := NewNotifier(nil, nil, false, 512)
	require.Equal(t, 512, n.Cap())
}
