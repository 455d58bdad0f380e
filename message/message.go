// Package message defines the call message exchanged between client and
// server inside an envelope.
//
// A Call is the request half of one RPC: the "Service.Method" name plus
// the registry-encoded request payload. The response half carries no
// wrapper — it is the registry-encoded result (or fault) bytes directly.
package message

import "bitrpc/codec"

// Call is one RPC request as laid out on the wire:
//
//	int32 method length | method UTF-8 bytes | int32 payload length | payload bytes
type Call struct {
	Method  string // Always "ServiceName.MethodName", e.g. "Auth.Login"
	Payload []byte // Registry-encoded request object
}

// Encode appends the call layout to w.
func (c *Call) Encode(w *codec.Writer) {
	w.WriteString(c.Method)
	w.WriteBytes(c.Payload)
}

// DecodeCall reads one call message from r. Whether the method name is
// well-formed ("Service.Method") is the dispatcher's concern, not a wire
// validity condition.
func DecodeCall(r *codec.Reader) (*Call, error) {
	method, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return &Call{Method: method, Payload: payload}, nil
}
