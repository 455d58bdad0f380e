// Package codec implements the self-describing binary serialization layer:
// a little-endian stream writer/reader pair, the presence bitmask used for
// optional message fields, and the type registry that maps stable type
// identifiers to encode/decode handlers.
//
// Every multi-byte value on the wire is little-endian in every
// implementation of this protocol — byte order is the cross-language
// contract, so it is never left to the host.
package codec

import (
	"encoding/binary"
	"math"
	"time"
)

// NullLength is the sentinel length marking an absent string, byte
// sequence, list, or object reference. Length 0 means "present but empty"
// and must never be conflated with -1.
const NullLength int32 = -1

// Writer serializes primitives into a growable byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteBool encodes a bool as int32 1 or 0.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt32(1)
	} else {
		w.WriteInt32(0)
	}
}

// WriteString writes int32 byte length followed by the UTF-8 bytes.
// An empty string writes length 0 — present but empty. Use
// WriteNullString for an absent string.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteNullString writes the -1 sentinel marking an absent string.
func (w *Writer) WriteNullString() {
	w.WriteInt32(NullLength)
}

// WriteBytes writes int32 length followed by the raw bytes. A nil slice
// is absent (-1); an empty non-nil slice is present with length 0.
func (w *Writer) WriteBytes(b []byte) {
	if b == nil {
		w.WriteInt32(NullLength)
		return
	}
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteTime writes the timestamp as int64 milliseconds since the Unix
// epoch. The zero time is absent (-1).
func (w *Writer) WriteTime(t time.Time) {
	if t.IsZero() {
		w.WriteInt64(int64(NullLength))
		return
	}
	w.WriteInt64(t.UnixMilli())
}

// WriteList writes int32 element count followed by each element via fn.
// A nil slice is absent (-1).
func WriteList[T any](w *Writer, items []T, fn func(*Writer, T)) {
	if items == nil {
		w.WriteInt32(NullLength)
		return
	}
	w.WriteInt32(int32(len(items)))
	for _, item := range items {
		fn(w, item)
	}
}
