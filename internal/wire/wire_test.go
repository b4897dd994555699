package wire

import (
	"bytes"
	"io"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		width int
		want  []byte
	}{
		{"zero pads fully", 0, 4, []byte{0, 0, 0, 0}},
		{"byte boundary", 255, 2, []byte{0x00, 0xFF}},
		{"exact fit", 256, 2, []byte{0x01, 0x00}},
		{"single byte", 7, 1, []byte{0x07}},
		{"wide padding", 0xABCD, 6, []byte{0, 0, 0, 0, 0xAB, 0xCD}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pack(big.NewInt(tt.value), tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPackLengthExceeded(t *testing.T) {
	_, err := Pack(big.NewInt(256), 1)
	require.ErrorIs(t, err, ErrLengthExceeded)

	big3 := new(big.Int).Lsh(big.NewInt(1), 2048)
	_, err = Pack(big3, 256)
	require.ErrorIs(t, err, ErrLengthExceeded)
}

func TestUnpackLeadingZeros(t *testing.T) {
	with := Unpack([]byte{0x00, 0x00, 0x01, 0x02})
	without := Unpack([]byte{0x01, 0x02})
	assert.Zero(t, with.Cmp(without))
	assert.Equal(t, int64(258), with.Int64())
}

func TestPackUnpackRoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(65535),
		new(big.Int).SetBytes(bytes.Repeat([]byte{0xFE}, 100)),
	}
	for _, v := range values {
		packed, err := Pack(v, LenPK)
		require.NoError(t, err)
		require.Len(t, packed, LenPK)
		assert.Zero(t, Unpack(packed).Cmp(v))
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{0xAA}, 4096),
	}
	for _, p := range payloads {
		require.NoError(t, WriteFrame(&buf, p))
	}
	for _, p := range payloads {
		got, err := ReadFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	// Prefix claims 10 bytes, only 3 follow.
	r := bytes.NewReader([]byte{0x00, 0x0A, 1, 2, 3})
	_, err := ReadFrame(r)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteFrameTooLarge(t *testing.T) {
	err := WriteFrame(io.Discard, make([]byte, MaxFrame+1))
	require.ErrorIs(t, err, ErrLengthExceeded)
}
