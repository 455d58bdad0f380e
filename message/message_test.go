package message

import (
	"bytes"
	"errors"
	"testing"

	"bitrpc/codec"
)

func TestCallRoundTrip(t *testing.T) {
	call := &Call{
		Method:  "Auth.Login",
		Payload: []byte{0x01, 0x02, 0x03},
	}

	w := codec.NewWriter()
	call.Encode(w)

	decoded, err := DecodeCall(codec.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("DecodeCall failed: %v", err)
	}
	if decoded.Method != call.Method {
		t.Errorf("method mismatch: got %q, want %q", decoded.Method, call.Method)
	}
	if !bytes.Equal(decoded.Payload, call.Payload) {
		t.Errorf("payload mismatch: got %x, want %x", decoded.Payload, call.Payload)
	}
}

func TestCallWireLayout(t *testing.T) {
	call := &Call{Method: "A.B", Payload: []byte{0xff}}
	w := codec.NewWriter()
	call.Encode(w)

	want := []byte{
		0x03, 0x00, 0x00, 0x00, 'A', '.', 'B',
		0x01, 0x00, 0x00, 0x00, 0xff,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("layout mismatch:\n got %x\nwant %x", w.Bytes(), want)
	}
}

func TestCallEmptyPayload(t *testing.T) {
	call := &Call{Method: "A.B", Payload: []byte{}}
	w := codec.NewWriter()
	call.Encode(w)

	decoded, err := DecodeCall(codec.NewReader(w.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Payload == nil || len(decoded.Payload) != 0 {
		t.Fatalf("empty payload decoded as %v", decoded.Payload)
	}
}

func TestDecodeCallTruncated(t *testing.T) {
	call := &Call{Method: "Auth.Login", Payload: []byte{1, 2, 3, 4}}
	w := codec.NewWriter()
	call.Encode(w)

	full := w.Bytes()
	for _, cut := range []int{0, 2, 5, len(full) - 1} {
		if _, err := DecodeCall(codec.NewReader(full[:cut])); !errors.Is(err, codec.ErrUnexpectedEndOfStream) {
			t.Errorf("cut at %d: got %v, want ErrUnexpectedEndOfStream", cut, err)
		}
	}
}
