package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarByteRoundTrip(t *testing.T) {
	cases := [][]uint64{
		nil,
		{0},
		{0, 1, 127, 128, 16383, 16384, 2097151, 2097152},
		{1, 1, 1, 1},
		{1 << 40, 3, 7},
	}
	for _, xs := range cases {
		enc := EncodeVarByte(nil, xs)
		dec, err := DecodeVarByte(enc)
		require.NoError(t, err)
		if len(xs) == 0 {
			require.Empty(t, dec)
			continue
		}
		require.Equal(t, xs, dec)
	}
}

// S1 from spec.md §8.
func TestVarByteEncodeExpectedBytes(t *testing.T) {
	xs := []uint64{0, 1, 127, 128, 16383, 16384, 2097151, 2097152}
	want := []byte{
		0x00,
		0x01,
		0x7F,
		0x80, 0x01,
		0xFF, 0x7F,
		0x80, 0x80, 0x01,
		0xFF, 0xFF, 0x7F,
		0x80, 0x80, 0x80, 0x01,
	}
	got := EncodeVarByte(nil, xs)
	require.Equal(t, want, got)
}

func TestDecodeVarByteTruncatedStream(t *testing.T) {
	enc := EncodeVarByte(nil, []uint64{1, 300})
	// Drop the final terminating byte of the second integer.
	truncated := enc[:len(enc)-1]
	dec, err := DecodeVarByte(truncated)
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, dec)
}

func TestDecodeVarByteOverflow(t *testing.T) {
	overlong := make([]byte, 11)
	for i := range overlong {
		overlong[i] = 0x80
	}
	_, err := DecodeVarByte(overlong)
	require.ErrorIs(t, err, ErrCodecOverflow)
}

func TestEncodeVarByteAppendsToDst(t *testing.T) {
	dst := []byte{0xAA}
	out := EncodeVarByte(dst, []uint64{1})
	require.Equal(t, []byte{0xAA, 0x01}, out)
}
