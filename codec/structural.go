package codec

import (
	"fmt"
	"reflect"
)

// Structural is the decoded form of the generic structural encoding: the
// declared type name plus the ordered field name/value pairs.
//
// The structural form exists as a development aid for types that have no
// generated handler yet. It is never part of a cross-language schema
// contract: it travels under its own reserved identifier, and a peer that
// has not opted in rejects it at decode time instead of guessing.
type Structural struct {
	TypeName string
	Fields   []StructuralField
}

// StructuralField is one encoded field of a structural payload.
type StructuralField struct {
	Name  string
	Value any
}

// writeStructural encodes an unregistered struct as StructuralTypeID,
// the type name, then ordered field-name/value pairs. Field values go
// through WriteObject, so they must themselves be registered types (or
// structs, recursively).
func (reg *Registry) writeStructural(w *Writer, rv reflect.Value) error {
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("codec: structural fallback cannot encode %s", rv.Type())
	}
	w.WriteInt32(StructuralTypeID)
	w.WriteString(rv.Type().Name())

	t := rv.Type()
	exported := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			exported = append(exported, i)
		}
	}
	w.WriteInt32(int32(len(exported)))
	for _, i := range exported {
		w.WriteString(t.Field(i).Name)
		if err := reg.WriteObject(w, rv.Field(i).Interface()); err != nil {
			return fmt.Errorf("codec: structural field %s: %w", t.Field(i).Name, err)
		}
	}
	return nil
}

// readStructural decodes a structural payload into its generic form.
// The reserved identifier has already been consumed by ReadObject.
func (reg *Registry) readStructural(r *Reader) (any, error) {
	name, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, ErrUnexpectedEndOfStream
	}
	s := &Structural{TypeName: name, Fields: make([]StructuralField, 0, count)}
	for i := int32(0); i < count; i++ {
		fieldName, _, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		value, err := reg.ReadObject(r)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, StructuralField{Name: fieldName, Value: value})
	}
	return s, nil
}
