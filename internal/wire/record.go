package wire

import (
	"encoding/binary"
	"fmt"
)

// Fixed is the set of primitives stored raw.
type Fixed interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

type Writer struct {
	buf []byte
}

// NewWriter starts a record with n members.
func NewWriter(n int) *Writer {
	w := &Writer{buf: make([]byte, 0, 32)}
	w.buf = AppendVarUint(w.buf, uint64(n))
	return w
}

func (w *Writer) PutString(s string) {
	w.buf = AppendVarUint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) Bytes() []byte { return w.buf }

// PutFixed appends v little-endian.
func PutFixed[T Fixed](w *Writer, v T) {
	w.buf, _ = binary.Append(w.buf, binary.LittleEndian, v)
}

type Reader struct {
	buf   []byte
	pos   int
	count int
}

// NewReader reads the member count and positions the reader on the first
// member.
func NewReader(data []byte) (*Reader, error) {
	n, sz, err := ReadVarUint(data)
	if err != nil {
		return nil, fmt.Errorf("member count: %w", err)
	}
	return &Reader{buf: data, pos: sz, count: int(n)}, nil
}

// Count is the member count announced by the record.
func (r *Reader) Count() int { return r.count }

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) ReadString() (string, error) {
	l, n, err := ReadVarUint(r.buf[r.pos:])
	if err != nil {
		return "", fmt.Errorf("string length at %d: %w", r.pos, err)
	}
	start := r.pos + n
	if uint64(len(r.buf)-start) < l {
		return "", fmt.Errorf("string at %d: %w", r.pos, ErrTruncated)
	}
	r.pos = start + int(l)
	return string(r.buf[start:r.pos]), nil
}

// ReadFixed decodes one little-endian primitive.
func ReadFixed[T Fixed](r *Reader) (T, error) {
	var v T
	n, err := binary.Decode(r.buf[r.pos:], binary.LittleEndian, &v)
	if err != nil {
		return v, fmt.Errorf("fixed at %d: %w", r.pos, ErrTruncated)
	}
	r.pos += n
	return v, nil
}
