package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSetBit(t *testing.T) {
	var v uint8
	v = SetBit(v, 0, true)
	v = SetBit(v, 7, true)
	require.True(t, GetBit(v, 0))
	require.True(t, GetBit(v, 7))
	require.False(t, GetBit(v, 1))

	v = SetBit(v, 0, false)
	require.False(t, GetBit(v, 0))
}

func TestGetSetBits8(t *testing.T) {
	var v uint8 = 0xFF
	v = SetBits(v, 2, 5, 0x0)
	require.Equal(t, uint8(0b1100_0011), v)
	require.Equal(t, uint8(0), GetBits(v, 2, 5))
}

func TestGetSetBits16(t *testing.T) {
	var v uint16
	v = SetBits(v, 0, 7, 0xCD)
	v = SetBits(v, 8, 11, 0xA)
	require.Equal(t, uint16(0xACD), v)
}

func TestSetBitsPreservesOutsideRange(t *testing.T) {
	var v uint8 = 0b1010_1010
	v = SetBits(v, 0, 3, 0b1111)
	require.Equal(t, uint8(0b1010_1111), v)
}

func TestPage(t *testing.T) {
	require.Equal(t, uint8(0xC0), Page(0xC0FF))
	require.Equal(t, uint8(0x00), Page(0x00FF))
}

func TestKiB(t *testing.T) {
	require.Equal(t, 16384, KiB(16))
	require.Equal(t, KiB(16), KB(16))
}
