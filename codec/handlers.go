package codec

import (
	"fmt"
	"reflect"
	"time"
)

// primitiveHandler adapts a write/read function pair to the Handler
// interface. All built-in handlers are primitiveHandlers; its identifier
// is derived from the declared cross-language type name, not from any Go
// type information.
type primitiveHandler struct {
	id    int32
	write func(w *Writer, v any) error
	read  func(r *Reader) (any, error)
}

func (h *primitiveHandler) ID() int32                    { return h.id }
func (h *primitiveHandler) Write(w *Writer, v any) error { return h.write(w, v) }
func (h *primitiveHandler) Read(r *Reader) (any, error)  { return h.read(r) }

func typeMismatch(want string, got any) error {
	return fmt.Errorf("codec: handler for %s got %T", want, got)
}

// registerBuiltins installs the primitive handlers every peer agrees on.
// The declared names ("int32", "double", ...) are the cross-language
// contract the identifiers are derived from.
func registerBuiltins(reg *Registry) {
	register := func(t reflect.Type, name string, write func(*Writer, any) error, read func(*Reader) (any, error)) {
		h := &primitiveHandler{id: TypeID(name), write: write, read: read}
		if err := reg.Register(t, h); err != nil {
			// Built-in names are fixed; a collision among them would be a
			// protocol definition bug, not a runtime condition.
			panic(err)
		}
	}

	register(reflect.TypeOf(int32(0)), "int32",
		func(w *Writer, v any) error {
			i, ok := v.(int32)
			if !ok {
				return typeMismatch("int32", v)
			}
			w.WriteInt32(i)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadInt32() })

	register(reflect.TypeOf(int64(0)), "int64",
		func(w *Writer, v any) error {
			i, ok := v.(int64)
			if !ok {
				return typeMismatch("int64", v)
			}
			w.WriteInt64(i)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadInt64() })

	register(reflect.TypeOf(float32(0)), "float",
		func(w *Writer, v any) error {
			f, ok := v.(float32)
			if !ok {
				return typeMismatch("float", v)
			}
			w.WriteFloat32(f)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadFloat32() })

	register(reflect.TypeOf(float64(0)), "double",
		func(w *Writer, v any) error {
			f, ok := v.(float64)
			if !ok {
				return typeMismatch("double", v)
			}
			w.WriteFloat64(f)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadFloat64() })

	register(reflect.TypeOf(false), "bool",
		func(w *Writer, v any) error {
			b, ok := v.(bool)
			if !ok {
				return typeMismatch("bool", v)
			}
			w.WriteBool(b)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadBool() })

	register(reflect.TypeOf(""), "string",
		func(w *Writer, v any) error {
			s, ok := v.(string)
			if !ok {
				return typeMismatch("string", v)
			}
			w.WriteString(s)
			return nil
		},
		func(r *Reader) (any, error) {
			s, _, err := r.ReadString()
			return s, err
		})

	register(reflect.TypeOf([]byte(nil)), "bytes",
		func(w *Writer, v any) error {
			b, ok := v.([]byte)
			if !ok {
				return typeMismatch("bytes", v)
			}
			w.WriteBytes(b)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadBytes() })

	register(reflect.TypeOf(time.Time{}), "datetime",
		func(w *Writer, v any) error {
			t, ok := v.(time.Time)
			if !ok {
				return typeMismatch("datetime", v)
			}
			w.WriteTime(t)
			return nil
		},
		func(r *Reader) (any, error) { return r.ReadTime() })

	if err := reg.register(reflect.TypeOf(Fault{}), faultHandler{}); err != nil {
		panic(err)
	}
}
