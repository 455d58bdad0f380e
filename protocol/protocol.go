// Package protocol implements the length-prefixed envelope framing.
//
// The envelope solves TCP's sticky packet problem: the receiver reads a
// fixed 4-byte little-endian length first, then exactly that many payload
// bytes. One envelope carries one call message or one response payload.
//
//	0        4
//	┌────────┬─────────────────┐
//	│ length │ payload ...     │
//	│ uint32 │ length bytes    │
//	└────────┴─────────────────┘
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// LengthSize is the size of the envelope length prefix.
const LengthSize = 4

// DefaultMaxEnvelopeSize bounds the declared payload length a peer will
// accept. A length beyond the bound is a framing failure and fatal to the
// connection — there is no way to resynchronize a byte stream after a
// corrupt length prefix.
const DefaultMaxEnvelopeSize = 16 << 20

// ErrEnvelopeTooLarge is returned when a declared payload length exceeds
// the configured maximum.
var ErrEnvelopeTooLarge = errors.New("protocol: envelope exceeds maximum size")

// WriteEnvelope writes one complete envelope (length prefix + payload).
// The caller must serialize writes if multiple goroutines share w,
// otherwise envelopes interleave and corrupt the stream.
func WriteEnvelope(w io.Writer, payload []byte) error {
	var prefix [LengthSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// ReadEnvelope reads one complete envelope from r. io.ReadFull guarantees
// exactly the declared number of bytes: a peer that closes mid-payload
// surfaces as an error, never as a silently truncated payload. A clean
// EOF before the length prefix is io.EOF — the peer closed between
// messages, which ends a serving loop normally.
func ReadEnvelope(r io.Reader, maxSize uint32) ([]byte, error) {
	var prefix [LengthSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint32(prefix[:])
	if length > maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrEnvelopeTooLarge, length, maxSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			// EOF after a valid length prefix is a truncated message,
			// not a clean close.
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
