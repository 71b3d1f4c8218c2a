package value

import (
	"reflect"

	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

// encodeMutableRecord writes ptr (a non-nil pointer to a struct) as a
// REF_OBJECT: slot reservation, type descriptor, then fields, exactly
// the cycle-closing discipline spec.md §4.4/§9 describes for mutable
// values.
func encodeMutableRecord(w *wire.Writer, resolver *typedesc.DefaultResolver, rv reflect.Value) error {
	ptr := rv.Pointer()
	slot, emitted, err := w.TryBackrefPointer(uint64(ptr))
	if err != nil {
		return err
	}
	if emitted {
		return nil
	}

	if err := w.EmitTag(tag.RefObject); err != nil {
		return err
	}

	ref, ok := resolver.RegisteredFor(rv.Type().Elem())
	if !ok {
		return errs.ErrTypeNotResolvable
	}
	if err := typedesc.EncodeType(w, ref); err != nil {
		return err
	}

	w.PushPending(slot)
	elem := rv.Elem()
	for i := 0; i < elem.NumField(); i++ {
		if err := Encode(w, resolver, elem.Field(i).Interface()); err != nil {
			return err
		}
	}

	return w.PopPending(slot)
}

// encodeImmutableRecord writes rv (a struct passed by value) as an
// OBJECT: type descriptor then fields inline, with no slot reservation
// since value-typed records carry no Go-observable identity to dedup.
func encodeImmutableRecord(w *wire.Writer, resolver *typedesc.DefaultResolver, rv reflect.Value) error {
	if err := w.EmitTag(tag.Object); err != nil {
		return err
	}

	ref, ok := resolver.RegisteredFor(rv.Type())
	if !ok {
		return errs.ErrTypeNotResolvable
	}
	if err := typedesc.EncodeType(w, ref); err != nil {
		return err
	}

	for i := 0; i < rv.NumField(); i++ {
		if err := Encode(w, resolver, rv.Field(i).Interface()); err != nil {
			return err
		}
	}

	return nil
}

// encodePrimitiveRecord writes rv (a registered named type whose
// underlying Go kind is a primitive, e.g. `type Meters float64`) as an
// OBJECT: type descriptor then the value itself, run back through
// Encode's own primitive dispatch so the usual fast paths (small-int
// literals, FLOAT16 narrowing, ...) still apply. spec.md §4.4 calls this
// "runtime type is primitive → OBJECT + raw bytes"; there is no
// dedicated raw encoding here because Encode's primitive cases already
// are the raw encoding.
func encodePrimitiveRecord(w *wire.Writer, resolver *typedesc.DefaultResolver, rv reflect.Value) error {
	if err := w.EmitTag(tag.Object); err != nil {
		return err
	}

	ref, ok := resolver.RegisteredFor(rv.Type())
	if !ok {
		return errs.ErrTypeNotResolvable
	}
	if err := typedesc.EncodeType(w, ref); err != nil {
		return err
	}

	return Encode(w, resolver, underlyingPrimitive(rv))
}

func underlyingPrimitive(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32:
		return float32(rv.Float())
	case reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	default:
		return nil
	}
}

// decodePrimitiveRecord reads the raw value OBJECT carries for a
// primitive-kind registered type and converts it back to rt — the
// counterpart to encodePrimitiveRecord.
func decodePrimitiveRecord(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, rt reflect.Type) (any, error) {
	v, err := Decode(r, resolver, sandbox)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(rt) {
		return nil, errs.ErrTypeNotResolvable
	}

	return rv.Convert(rt).Interface(), nil
}

func decodeImmutableRecord(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (any, error) {
	t, err := typedesc.DecodeType(r, resolver, sandbox)
	if err != nil {
		return nil, err
	}

	if rt, ok := resolver.GoTypeFor(t); ok && rt.Kind() != reflect.Struct {
		return decodePrimitiveRecord(r, resolver, sandbox, rt)
	}

	obj, err := resolver.Allocate(t)
	if err != nil {
		return nil, err
	}

	n, err := resolver.FieldCount(t)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		fv, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		if err := resolver.SetField(obj, i, fv); err != nil {
			return nil, err
		}
	}

	if inst, ok := obj.(*typedesc.DynamicInstance); ok {
		return inst, nil
	}

	return reflect.ValueOf(obj).Elem().Interface(), nil
}

// decodeMutableRecord reads a REF_OBJECT payload whose type has already
// been determined not to be the built-in Dict sentinel (see Decode's
// tag.RefObject case, which reserves the slot and resolves the type
// before branching between this and decodeDict).
func decodeMutableRecord(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, slot uint64, t typedesc.Value) (any, error) {
	obj, err := resolver.Allocate(t)
	if err != nil {
		return nil, err
	}
	r.Install(slot, obj)
	r.PushPending(slot)

	n, err := resolver.FieldCount(t)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		fv, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		if err := resolver.SetField(obj, i, fv); err != nil {
			return nil, err
		}
	}

	if err := r.PopPending(slot); err != nil {
		return nil, err
	}

	return obj, nil
}
