package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// ErrUnexpectedEndOfStream is returned when a read needs more bytes than
// remain in the buffer. Every multi-byte read checks the remaining length
// up front — truncation is detected, never inferred from a panic.
var ErrUnexpectedEndOfStream = errors.New("codec: unexpected end of stream")

// Reader deserializes primitives from a fixed byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) require(n int) error {
	if r.pos+n > len(r.data) {
		return ErrUnexpectedEndOfStream
	}
	return nil
}

func (r *Reader) ReadInt32() (int32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	bits, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadBool mirrors WriteBool: any non-zero int32 is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadString reads a length-prefixed string. present is false when the
// length is the -1 sentinel; length 0 yields ("", true, nil) — an absent
// string and an empty string are distinct on the wire and stay distinct
// here.
func (r *Reader) ReadString() (s string, present bool, err error) {
	length, err := r.ReadInt32()
	if err != nil {
		return "", false, err
	}
	if length == NullLength {
		return "", false, nil
	}
	if length < 0 {
		return "", false, ErrUnexpectedEndOfStream
	}
	if err := r.require(int(length)); err != nil {
		return "", false, err
	}
	s = string(r.data[r.pos : r.pos+int(length)])
	r.pos += int(length)
	return s, true, nil
}

// ReadBytes reads a length-prefixed byte sequence. The -1 sentinel yields
// a nil slice; length 0 yields an empty non-nil slice.
func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if length == NullLength {
		return nil, nil
	}
	if length < 0 {
		return nil, ErrUnexpectedEndOfStream
	}
	if err := r.require(int(length)); err != nil {
		return nil, err
	}
	b := make([]byte, length)
	copy(b, r.data[r.pos:r.pos+int(length)])
	r.pos += int(length)
	return b, nil
}

// ReadTime mirrors WriteTime. The -1 sentinel yields the zero time.
func (r *Reader) ReadTime() (time.Time, error) {
	ms, err := r.ReadInt64()
	if err != nil {
		return time.Time{}, err
	}
	if ms == int64(NullLength) {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms), nil
}

// ReadList reads a count-prefixed list via fn. The -1 sentinel yields a
// nil slice.
func ReadList[T any](r *Reader, fn func(*Reader) (T, error)) ([]T, error) {
	count, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if count == NullLength {
		return nil, nil
	}
	if count < 0 {
		return nil, ErrUnexpectedEndOfStream
	}
	// The count is attacker-controlled; cap the initial allocation by the
	// bytes actually remaining. A truncated list still fails on the first
	// missing element, just without a huge up-front allocation.
	capHint := int(count)
	if capHint > r.Remaining() {
		capHint = r.Remaining()
	}
	items := make([]T, 0, capHint)
	for i := int32(0); i < count; i++ {
		item, err := fn(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
