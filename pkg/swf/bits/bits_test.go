package bits

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBits(t *testing.T) {
	// 0010 1000 1100 0001
	r := NewReader(bytes.NewReader([]byte{0x28, 0xC1}))

	read := func(n uint8) uint64 {
		v, err := r.ReadBits(n)
		require.NoError(t, err)
		return v
	}
	require.Equal(t, uint64(0), read(1))
	require.Equal(t, uint64(1), read(2))
	require.Equal(t, uint64(2), read(3))
	require.Equal(t, uint64(3), read(4))
	require.Equal(t, uint64(0), read(5))
	require.Equal(t, uint64(1), read(1))

	_, err := r.ReadBits(1)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadSigned(t *testing.T) {
	// 00 01 10 11
	r := NewReader(bytes.NewReader([]byte{0x1B}))

	_, err := r.ReadSigned(0)
	require.ErrorIs(t, err, ErrSignedWidth)
	_, err = r.ReadSigned(1)
	require.ErrorIs(t, err, ErrSignedWidth)

	read := func() int64 {
		v, err := r.ReadSigned(2)
		require.NoError(t, err)
		return v
	}
	require.Equal(t, int64(0), read())
	require.Equal(t, int64(1), read())
	require.Equal(t, int64(-2), read())
	require.Equal(t, int64(-1), read())

	_, err = r.ReadSigned(2)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriteBits(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)

	w.TryWriteBits(0, 1)
	w.TryWriteBits(1, 2)
	w.TryWriteBits(2, 3)
	w.TryWriteBits(3, 4)
	w.TryWriteBits(0, 5)
	w.TryWriteBits(1, 1)
	require.NoError(t, w.Flush())

	require.Equal(t, []byte{0x28, 0xC1}, buf.Bytes())
}

func TestWriteSigned(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)

	w.TryWriteSigned(0, 2)
	w.TryWriteSigned(1, 2)
	w.TryWriteSigned(-2, 2)
	w.TryWriteSigned(-1, 2)
	require.NoError(t, w.Flush())

	require.Equal(t, []byte{0x1B}, buf.Bytes())

	require.ErrorIs(t, w.WriteSigned(0, 1), ErrSignedWidth)
}

func TestFlushZeroPads(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)

	require.NoError(t, w.WriteBits(1, 7))
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0x02}, buf.Bytes())

	// Flushing an aligned writer emits nothing.
	require.NoError(t, w.Flush())
	require.Equal(t, []byte{0x02}, buf.Bytes())
}

func TestRequiredBits(t *testing.T) {
	require.Equal(t, uint8(2), RequiredBits(1))
	require.Equal(t, uint8(2), RequiredBits(0))
	require.Equal(t, uint8(3), RequiredBits(2))
	require.Equal(t, uint8(2), RequiredBits(-1))
	require.Equal(t, uint8(2), RequiredBits(-2))
	require.Equal(t, uint8(3), RequiredBits(-3))
	require.Equal(t, uint8(3), RequiredBits(0, 1, 2, 3, -1, -2))
	require.Equal(t, uint8(3), RequiredBits(0, 1, 2, 3, -1, -2, -3, -4))
	require.Equal(t, uint8(4), RequiredBits(0, 1, 2, 3, 4, -1, -2, -3, -4, -5))
}

func TestRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)

	values := []int64{0, 1, -1, 63, -64, 1000, -1000}
	for _, v := range values {
		n := RequiredBits(v)
		require.NoError(t, w.WriteSigned(v, n))
	}
	require.NoError(t, w.Flush())

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for _, v := range values {
		got, err := r.ReadSigned(RequiredBits(v))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestAlign(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x01}))

	v, err := r.ReadBits(3)
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)

	r.Align()

	v, err = r.ReadBits(8)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}
