package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"
)

func TestInt32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, math.MinInt32, math.MaxInt32} {
		w := NewWriter()
		w.WriteInt32(v)

		got, err := NewReader(w.Bytes()).ReadInt32()
		if err != nil {
			t.Fatalf("ReadInt32(%d) failed: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip mismatch: got %d, want %d", got, v)
		}
	}
}

func TestInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, -1, math.MinInt64, math.MaxInt64, 1700000000000} {
		w := NewWriter()
		w.WriteInt64(v)

		got, err := NewReader(w.Bytes()).ReadInt64()
		if err != nil {
			t.Fatalf("ReadInt64(%d) failed: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip mismatch: got %d, want %d", got, v)
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteFloat32(3.5)
	w.WriteFloat64(-2.25)
	w.WriteFloat64(math.Inf(1))

	r := NewReader(w.Bytes())
	f32, err := r.ReadFloat32()
	if err != nil || f32 != 3.5 {
		t.Fatalf("ReadFloat32: got %v, %v", f32, err)
	}
	f64, err := r.ReadFloat64()
	if err != nil || f64 != -2.25 {
		t.Fatalf("ReadFloat64: got %v, %v", f64, err)
	}
	inf, err := r.ReadFloat64()
	if err != nil || !math.IsInf(inf, 1) {
		t.Fatalf("ReadFloat64: got %v, %v", inf, err)
	}
}

func TestBoolWireFormat(t *testing.T) {
	// Bools are 32-bit on the wire: 1 = true, 0 = false.
	w := NewWriter()
	w.WriteBool(true)
	w.WriteBool(false)

	want := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("bool encoding mismatch: got %x, want %x", w.Bytes(), want)
	}

	r := NewReader(w.Bytes())
	b1, _ := r.ReadBool()
	b2, err := r.ReadBool()
	if err != nil || !b1 || b2 {
		t.Fatalf("bool round trip: got %v, %v, err %v", b1, b2, err)
	}
}

func TestLittleEndianLayout(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(0x01020304)

	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("expected little-endian bytes %x, got %x", want, w.Bytes())
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"hello", "", "héllo wörld", "日本語"} {
		w := NewWriter()
		w.WriteString(s)

		got, present, err := NewReader(w.Bytes()).ReadString()
		if err != nil {
			t.Fatalf("ReadString(%q) failed: %v", s, err)
		}
		if !present {
			t.Fatalf("string %q decoded as absent", s)
		}
		if got != s {
			t.Errorf("round trip mismatch: got %q, want %q", got, s)
		}
	}
}

// An absent string (length -1) must never decode as an empty string, and
// an empty string (length 0) must never decode as absent.
func TestNullStringVsEmptyString(t *testing.T) {
	w := NewWriter()
	w.WriteNullString()
	w.WriteString("")

	wantNull := []byte{0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(w.Bytes()[:4], wantNull) {
		t.Fatalf("null string sentinel: got %x, want %x", w.Bytes()[:4], wantNull)
	}

	r := NewReader(w.Bytes())
	_, present, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Error("length -1 decoded as present")
	}

	s, present, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Error("length 0 decoded as absent")
	}
	if s != "" {
		t.Errorf("expected empty string, got %q", s)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	// nil is absent, empty non-nil is present — they stay distinct.
	w := NewWriter()
	w.WriteBytes(nil)
	w.WriteBytes([]byte{})
	w.WriteBytes([]byte{0xde, 0xad})

	r := NewReader(w.Bytes())
	b, err := r.ReadBytes()
	if err != nil || b != nil {
		t.Fatalf("nil bytes: got %v, err %v", b, err)
	}
	b, err = r.ReadBytes()
	if err != nil || b == nil || len(b) != 0 {
		t.Fatalf("empty bytes: got %v, err %v", b, err)
	}
	b, err = r.ReadBytes()
	if err != nil || !bytes.Equal(b, []byte{0xde, 0xad}) {
		t.Fatalf("bytes payload: got %x, err %v", b, err)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteTime(time.Time{})
	stamp := time.UnixMilli(1700000000123)
	w.WriteTime(stamp)

	r := NewReader(w.Bytes())
	zero, err := r.ReadTime()
	if err != nil {
		t.Fatal(err)
	}
	if !zero.IsZero() {
		t.Errorf("sentinel timestamp decoded as %v", zero)
	}
	got, err := r.ReadTime()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(stamp) {
		t.Errorf("timestamp mismatch: got %v, want %v", got, stamp)
	}
}

func TestListRoundTrip(t *testing.T) {
	w := NewWriter()
	WriteList(w, []int32(nil), (*Writer).WriteInt32)
	WriteList(w, []int32{}, (*Writer).WriteInt32)
	WriteList(w, []int32{1, -2, 3}, (*Writer).WriteInt32)

	r := NewReader(w.Bytes())
	absent, err := ReadList(r, (*Reader).ReadInt32)
	if err != nil || absent != nil {
		t.Fatalf("absent list: got %v, err %v", absent, err)
	}
	empty, err := ReadList(r, (*Reader).ReadInt32)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty list: got %v, err %v", empty, err)
	}
	got, err := ReadList(r, (*Reader).ReadInt32)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != -2 || got[2] != 3 {
		t.Fatalf("list mismatch: got %v", got)
	}
}

func TestStringListRoundTrip(t *testing.T) {
	items := []string{"a", "", "ccc"}
	w := NewWriter()
	WriteList(w, items, (*Writer).WriteString)

	got, err := ReadList(NewReader(w.Bytes()), func(r *Reader) (string, error) {
		s, _, err := r.ReadString()
		return s, err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "" || got[2] != "ccc" {
		t.Fatalf("string list mismatch: got %v", got)
	}
}

func TestTruncatedReads(t *testing.T) {
	reads := map[string]func(*Reader) error{
		"int32":   func(r *Reader) error { _, err := r.ReadInt32(); return err },
		"int64":   func(r *Reader) error { _, err := r.ReadInt64(); return err },
		"uint32":  func(r *Reader) error { _, err := r.ReadUint32(); return err },
		"float32": func(r *Reader) error { _, err := r.ReadFloat32(); return err },
		"float64": func(r *Reader) error { _, err := r.ReadFloat64(); return err },
		"bool":    func(r *Reader) error { _, err := r.ReadBool(); return err },
		"string":  func(r *Reader) error { _, _, err := r.ReadString(); return err },
		"bytes":   func(r *Reader) error { _, err := r.ReadBytes(); return err },
		"time":    func(r *Reader) error { _, err := r.ReadTime(); return err },
	}
	for name, read := range reads {
		if err := read(NewReader([]byte{0x01, 0x02})); !errors.Is(err, ErrUnexpectedEndOfStream) {
			t.Errorf("%s on 2 bytes: got %v, want ErrUnexpectedEndOfStream", name, err)
		}
	}

	// Declared length longer than the remaining data.
	w := NewWriter()
	w.WriteInt32(100)
	if _, _, err := NewReader(w.Bytes()).ReadString(); !errors.Is(err, ErrUnexpectedEndOfStream) {
		t.Errorf("string with truncated body: got %v", err)
	}
	if _, err := NewReader(w.Bytes()).ReadBytes(); !errors.Is(err, ErrUnexpectedEndOfStream) {
		t.Errorf("bytes with truncated body: got %v", err)
	}
}

// A hostile element count over a tiny buffer fails on the missing data,
// never with an allocation proportional to the declared count.
func TestListHugeDeclaredCount(t *testing.T) {
	w := NewWriter()
	w.WriteInt32(1 << 28) // declares 2^28 elements, provides none

	if _, err := ReadList(NewReader(w.Bytes()), (*Reader).ReadInt32); !errors.Is(err, ErrUnexpectedEndOfStream) {
		t.Fatalf("expected ErrUnexpectedEndOfStream, got %v", err)
	}
}

func TestReaderRemaining(t *testing.T) {
	w := NewWriter()
	w.WriteInt64(7)

	r := NewReader(w.Bytes())
	if r.Remaining() != 8 {
		t.Fatalf("expected 8 remaining, got %d", r.Remaining())
	}
	if _, err := r.ReadInt64(); err != nil {
		t.Fatal(err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", r.Remaining())
	}
}
