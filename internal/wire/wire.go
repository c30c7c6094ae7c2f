// Package wire is the little-endian record format used by the partinit
// command: a varint member count followed by members in declaration order,
// fixed-width members raw and strings length-prefixed.
package wire

import (
	"encoding/binary"
	"errors"
	"reflect"
)

var (
	ErrTruncated = errors.New("wire: truncated input")
	ErrOverflow  = errors.New("wire: varint overflows uint64")
)

// IsFixedKind reports whether k is stored raw, at FixedSize(k) bytes.
func IsFixedKind(k reflect.Kind) bool {
	return FixedSize(k) > 0
}

// FixedSize returns the byte width for fixed-size primitive kinds, -1 for
// everything else.
func FixedSize(k reflect.Kind) int {
	switch k {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		return 8
	default:
		return -1
	}
}

// AppendVarUint appends varint-encoded x to dst using a small stack scratch.
func AppendVarUint(dst []byte, x uint64) []byte {
	var scratch [binary.MaxVarintLen64]byte
	i := 0
	for x >= 0x80 {
		scratch[i] = byte(x) | 0x80
		x >>= 7
		i++
	}
	scratch[i] = byte(x)
	i++
	return append(dst, scratch[:i]...)
}

// ReadVarUint decodes a varint from b returning value and bytes consumed.
// n is 0 when b ends inside the varint.
func ReadVarUint(b []byte) (x uint64, n int, err error) {
	var s uint
	for i, c := range b {
		if i == binary.MaxVarintLen64-1 && c > 1 {
			return 0, 0, ErrOverflow
		}
		x |= uint64(c&0x7F) << s
		if c&0x80 == 0 {
			return x, i + 1, nil
		}
		s += 7
	}
	return 0, 0, ErrTruncated
}
