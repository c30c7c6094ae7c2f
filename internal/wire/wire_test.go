package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarUintRoundTrip(t *testing.T) {
	for _, x := range []uint64{0, 1, 127, 128, 300, 1 << 32, math.MaxUint64} {
		b := AppendVarUint(nil, x)
		require.Equal(t, binary.AppendUvarint(nil, x), b)
		got, n, err := ReadVarUint(b)
		require.NoError(t, err)
		assert.Equal(t, x, got)
		assert.Equal(t, len(b), n)
	}

	condition := func(x uint64, tail []byte) bool {
		b := AppendVarUint(nil, x)
		got, n, err := ReadVarUint(append(b, tail...))
		return err == nil && got == x && n == len(b)
	}
	require.NoError(t, quick.Check(condition, nil))
}

func TestVarUintErrors(t *testing.T) {
	_, _, err := ReadVarUint(nil)
	require.ErrorIs(t, err, ErrTruncated)

	_, _, err = ReadVarUint([]byte{0x80, 0x80})
	require.ErrorIs(t, err, ErrTruncated)

	over := make([]byte, binary.MaxVarintLen64+1)
	for i := range over {
		over[i] = 0xff
	}
	_, _, err = ReadVarUint(over)
	require.ErrorIs(t, err, ErrOverflow)

	// a tenth byte above 1 sets bits past 64
	high := append(bytes.Repeat([]byte{0xff}, 9), 0x7f)
	_, n := binary.Uvarint(high)
	require.Negative(t, n)
	_, _, err = ReadVarUint(high)
	require.ErrorIs(t, err, ErrOverflow)

	x, n, err := ReadVarUint(append(bytes.Repeat([]byte{0xff}, 9), 0x01))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), x)
	assert.Equal(t, 10, n)
}

func TestFixedSize(t *testing.T) {
	assert.Equal(t, 1, FixedSize(reflect.Bool))
	assert.Equal(t, 2, FixedSize(reflect.Int16))
	assert.Equal(t, 4, FixedSize(reflect.Float32))
	assert.Equal(t, 8, FixedSize(reflect.Uint64))
	assert.Equal(t, -1, FixedSize(reflect.String))
	assert.Equal(t, -1, FixedSize(reflect.Int))

	assert.True(t, IsFixedKind(reflect.Uint8))
	assert.False(t, IsFixedKind(reflect.Uintptr))
	assert.False(t, IsFixedKind(reflect.Struct))
}

func TestRecord(t *testing.T) {
	w := NewWriter(4)
	w.PutString("Alice")
	PutFixed(w, uint32(22))
	PutFixed(w, true)
	PutFixed(w, -1.5)

	r, err := NewReader(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 4, r.Count())

	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Alice", s)

	age, err := ReadFixed[uint32](r)
	require.NoError(t, err)
	assert.Equal(t, uint32(22), age)

	ok, err := ReadFixed[bool](r)
	require.NoError(t, err)
	assert.True(t, ok)

	f, err := ReadFixed[float64](r)
	require.NoError(t, err)
	assert.Equal(t, -1.5, f)

	assert.Zero(t, r.Remaining())
}

func TestRecordTruncated(t *testing.T) {
	_, err := NewReader(nil)
	require.ErrorIs(t, err, ErrTruncated)

	w := NewWriter(2)
	w.PutString("truncated")
	PutFixed(w, uint64(7))
	data := w.Bytes()

	r, err := NewReader(data[:5])
	require.NoError(t, err)
	_, err = r.ReadString()
	require.ErrorIs(t, err, ErrTruncated)

	r, err = NewReader(data[:len(data)-1])
	require.NoError(t, err)
	_, err = r.ReadString()
	require.NoError(t, err)
	_, err = ReadFixed[uint64](r)
	require.ErrorIs(t, err, ErrTruncated)
}
