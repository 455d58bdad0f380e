package codec

import (
	"errors"
	"fmt"
	"hash/crc32"
	"reflect"
)

// Reserved type identifiers. Everything else is derived from a declared
// type name via TypeID.
const (
	// NullTypeID on the wire marks a nil object reference.
	NullTypeID int32 = -1
	// FaultTypeID tags the error record so it can never be mistaken for
	// a legitimate response type.
	FaultTypeID int32 = 1
	// StructuralTypeID tags the opt-in generic structural encoding so a
	// strict decoder can detect and reject it.
	StructuralTypeID int32 = 2
)

// ErrHandlerNotFound is returned when no handler matches a runtime type
// at encode time or a type identifier at decode time.
var ErrHandlerNotFound = errors.New("codec: no handler registered")

// TypeID derives the stable type identifier for a declared type name.
// Two independent implementations of the same schema type must agree on
// the identifier, so it is a pure function of the name — never of
// anything process- or language-specific.
func TypeID(name string) int32 {
	return int32(crc32.ChecksumIEEE([]byte(name)))
}

// Handler encodes and decodes values of one registered type. Generated
// code supplies one Handler per schema message type, built from the
// Writer/Reader primitives and BitMask.
type Handler interface {
	// ID returns the stable type identifier written before the encoded
	// value in self-describing payloads.
	ID() int32
	Write(w *Writer, v any) error
	Read(r *Reader) (any, error)
}

// Registry maps runtime types to handlers (encode path) and type
// identifiers to handlers (decode path).
//
// A Registry is populated once at startup and read-only while serving.
// Registration concurrent with active use is disallowed by contract, so
// there is deliberately no lock on the lookup path.
type Registry struct {
	byID       map[int32]Handler
	byType     map[reflect.Type]Handler
	structural bool
}

// NewRegistry returns a registry pre-populated with the built-in
// primitive handlers and the fault handler.
func NewRegistry() *Registry {
	reg := &Registry{
		byID:   make(map[int32]Handler),
		byType: make(map[reflect.Type]Handler),
	}
	registerBuiltins(reg)
	return reg
}

// Register inserts a handler keyed by its identifier and the given
// runtime type. Reserved identifiers are rejected outright; two distinct
// types hashing to the same identifier is a construction-time failure,
// not something detected on the wire.
func (reg *Registry) Register(t reflect.Type, h Handler) error {
	id := h.ID()
	if id == NullTypeID || id == FaultTypeID || id == StructuralTypeID {
		return fmt.Errorf("codec: identifier %d is reserved", id)
	}
	return reg.register(t, h)
}

// register is the built-in registration path: collision-checked but not
// reservation-checked, so the fault handler can claim its reserved
// identifier.
func (reg *Registry) register(t reflect.Type, h Handler) error {
	id := h.ID()
	if existing, ok := reg.byID[id]; ok && existing != h {
		return fmt.Errorf("codec: identifier collision: %d already registered", id)
	}
	reg.byID[id] = h
	reg.byType[t] = h
	return nil
}

// RegisterType registers a handler under the concrete type T.
func RegisterType[T any](reg *Registry, h Handler) error {
	return reg.Register(reflect.TypeOf((*T)(nil)).Elem(), h)
}

// HandlerByType looks up the handler for a runtime type at encode time.
func (reg *Registry) HandlerByType(t reflect.Type) (Handler, bool) {
	h, ok := reg.byType[t]
	return h, ok
}

// HandlerByID looks up the handler for a type identifier at decode time.
func (reg *Registry) HandlerByID(id int32) (Handler, bool) {
	h, ok := reg.byID[id]
	return h, ok
}

// EnableStructuralFallback turns on the generic structural encoding for
// types with no registered handler. Development aid only: the structural
// form is not part of any cross-language schema contract, and peers that
// have not opted in reject it.
func (reg *Registry) EnableStructuralFallback() {
	reg.structural = true
}

// WriteObject writes a self-describing value: int32 type identifier, then
// the handler-encoded bytes. A nil value writes the -1 identifier alone.
func (reg *Registry) WriteObject(w *Writer, v any) error {
	if v == nil {
		w.WriteInt32(NullTypeID)
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			w.WriteInt32(NullTypeID)
			return nil
		}
		rv = rv.Elem()
	}
	h, ok := reg.byType[rv.Type()]
	if !ok {
		if reg.structural {
			return reg.writeStructural(w, rv)
		}
		return fmt.Errorf("%w for type %s", ErrHandlerNotFound, rv.Type())
	}
	w.WriteInt32(h.ID())
	return h.Write(w, v)
}

// ReadObject reads a self-describing value: the type identifier, then the
// handler-decoded bytes. The -1 identifier yields nil.
func (reg *Registry) ReadObject(r *Reader) (any, error) {
	id, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if id == NullTypeID {
		return nil, nil
	}
	if id == StructuralTypeID {
		if !reg.structural {
			return nil, errors.New("codec: structural payload rejected: fallback not enabled")
		}
		return reg.readStructural(r)
	}
	h, ok := reg.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w for identifier %d", ErrHandlerNotFound, id)
	}
	return h.Read(r)
}
