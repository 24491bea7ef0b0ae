package gatt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUUID16(t *testing.T) {
	got := UUID16(0x1800)
	want := UUID{b: []byte{0x00, 0x18}}
	require.True(t, got.Equal(want))
	require.True(t, got.Is16Bit())
	require.Equal(t, uint16(0x1800), got.Uint16())
}

func TestParseUUID(t *testing.T) {
	got, err := ParseUUID("180F")
	require.NoError(t, err)
	require.True(t, got.Equal(UUID16(0x180F)))

	got, err = ParseUUID("0000180F-0000-1000-8000-00805F9B34FB")
	require.NoError(t, err)
	require.True(t, got.Equal(UUID16(0x180F)))

	_, err = ParseUUID("not-a-uuid")
	require.Error(t, err)
}

func TestUUIDString(t *testing.T) {
	require.Equal(t, "180f", UUID16(0x180F).String())
}

func TestReverse(t *testing.T) {
	cases := []struct {
		fwd  []byte
		back []byte
	}{
		{fwd: []byte{0, 1}, back: []byte{1, 0}},
		{fwd: []byte{0, 1, 2}, back: []byte{2, 1, 0}},
		{
			fwd:  []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			back: []byte{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
		},
	}
	for _, tt := range cases {
		require.Equal(t, tt.back, reverse(tt.fwd))
	}
}
