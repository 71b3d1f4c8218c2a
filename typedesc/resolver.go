package typedesc

import (
	"reflect"

	"github.com/arloliu/jlcodec/errs"
)

// Resolver is the runtime-type-resolution oracle spec.md §6 requires:
// given a module-qualified name, produce (or fail to produce) a Value
// describing it; given a Value, allocate a zero instance, populate one
// field at a time, or build array storage for an element type and shape.
//
// typedesc never imports package value, so Resolver.SetField takes the
// field value as `any` rather than a richer decoded-value type; package
// value supplies the concrete values when it drives decoding.
type Resolver interface {
	Resolve(module ModuleRef, name string) (Value, bool)
	Allocate(t Value) (any, error)
	SetField(obj any, index int, v any) error
	NewArray(elemType Value, shape []int) (any, error)
}

// DefaultResolver is a reflection-based Resolver over a fixed registry of
// Go types the caller pre-registers, falling back to Sandbox-synthesized
// Dynamic types for anything unregistered.
type DefaultResolver struct {
	sandbox  *Sandbox
	registry map[string]reflect.Type
	refs     map[string]*Registered
	byGoType map[reflect.Type]*Registered
	dictRef  *Registered
}

// NewDefaultResolver creates a DefaultResolver backed by sandbox for
// types it cannot resolve against its own registry.
func NewDefaultResolver(sandbox *Sandbox) *DefaultResolver {
	d := &DefaultResolver{
		sandbox:  sandbox,
		registry: make(map[string]reflect.Type),
		refs:     make(map[string]*Registered),
		byGoType: make(map[reflect.Type]*Registered),
	}

	// Dict is a closed, built-in pseudo-type: package value recognizes
	// it and reads/writes its entries directly rather than through the
	// generic field-count/SetField loop (spec.md §9's closed-variant
	// dispatch, applied to value-hashed Go maps).
	d.dictRef = &Registered{Name: "Dict", ModuleRef: Sandboxed("jlcodec.builtin")}
	d.refs[registryKey(d.dictRef.ModuleRef, "Dict")] = d.dictRef

	return d
}

// DictType returns the sentinel type descriptor used for value-hashed Go
// maps (package value's encodeDict/decodeDict).
func (d *DefaultResolver) DictType() *Registered { return d.dictRef }

// IsDictType reports whether t is the sentinel Dict type.
func (d *DefaultResolver) IsDictType(t Value) bool {
	r, ok := t.(*Registered)

	return ok && r == d.dictRef
}

// RegisterType makes rt resolvable under (module, name). rt must be a
// struct type (for records) or any other Go kind supported by package
// value's encoders; rt is stored, not a pointer to rt.
func (d *DefaultResolver) RegisterType(module ModuleRef, name string, rt reflect.Type) {
	key := registryKey(module, name)
	ref := &Registered{Name: name, ModuleRef: module, GoTypeName: rt.String()}
	d.registry[key] = rt
	d.refs[key] = ref
	d.byGoType[rt] = ref
}

// RegisteredFor returns the Registered descriptor for the Go type rt, if
// any type was registered for it. Package value's encoder uses this to
// translate a reflect.Type it is about to encode a record for into the
// Value EncodeType needs.
func (d *DefaultResolver) RegisteredFor(rt reflect.Type) (*Registered, bool) {
	ref, ok := d.byGoType[rt]

	return ref, ok
}

func registryKey(module ModuleRef, name string) string {
	return module.String() + "#" + name
}

// GoTypeFor returns the registered Go type backing t, if t is a
// *Registered this resolver's registry recognizes. Package value's
// record encoder/decoder uses this to tell a primitive-kind registered
// type (spec.md §4.4's "runtime type is primitive" OBJECT fast path)
// apart from a struct-backed one before committing to either's wire
// shape.
func (d *DefaultResolver) GoTypeFor(t Value) (reflect.Type, bool) {
	v, ok := t.(*Registered)
	if !ok {
		return nil, false
	}
	rt, ok := d.registry[registryKey(v.ModuleRef, v.Name)]

	return rt, ok
}

// Resolve implements Resolver.
func (d *DefaultResolver) Resolve(module ModuleRef, name string) (Value, bool) {
	key := registryKey(module, name)
	if ref, ok := d.refs[key]; ok {
		return ref, true
	}
	if dyn, ok := d.sandbox.Lookup(name); ok {
		return dyn, true
	}

	return nil, false
}

// FieldCount returns the number of fields a record of type t has, for
// Registered types (via reflection on the registered Go struct type) and
// Dynamic types (via the synthesized field-name list) alike.
func (d *DefaultResolver) FieldCount(t Value) (int, error) {
	switch v := t.(type) {
	case *Registered:
		key := registryKey(v.ModuleRef, v.Name)
		rt, ok := d.registry[key]
		if !ok {
			return 0, errs.ErrTypeNotResolvable
		}

		return rt.NumField(), nil
	case *Dynamic:
		return len(v.Record.FieldNames), nil
	default:
		return 0, errs.ErrTypeNotResolvable
	}
}

// Allocate implements Resolver.
func (d *DefaultResolver) Allocate(t Value) (any, error) {
	switch v := t.(type) {
	case *Registered:
		key := registryKey(v.ModuleRef, v.Name)
		rt, ok := d.registry[key]
		if !ok {
			return nil, errs.ErrTypeNotResolvable
		}

		return reflect.New(rt).Interface(), nil
	case *Dynamic:
		return &DynamicInstance{Type: v, Fields: make(map[string]any, len(v.Record.FieldNames))}, nil
	default:
		return nil, errs.ErrTypeNotResolvable
	}
}

// SetField implements Resolver.
func (d *DefaultResolver) SetField(obj any, index int, v any) error {
	switch o := obj.(type) {
	case *DynamicInstance:
		if index < 0 || index >= len(o.Type.Record.FieldNames) {
			return errs.ErrFieldCountMismatch
		}
		o.Fields[o.Type.Record.FieldNames[index]] = v

		return nil
	default:
		rv := reflect.ValueOf(obj)
		if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
			return errs.ErrTypeNotResolvable
		}
		elem := rv.Elem()
		if index < 0 || index >= elem.NumField() {
			return errs.ErrFieldCountMismatch
		}
		field := elem.Field(index)
		if !field.CanSet() {
			return errs.ErrTypeNotResolvable
		}
		val := reflect.ValueOf(v)
		if v == nil {
			field.Set(reflect.Zero(field.Type()))

			return nil
		}
		if !val.Type().AssignableTo(field.Type()) {
			if val.Type().ConvertibleTo(field.Type()) {
				val = val.Convert(field.Type())
			} else {
				return errs.ErrFieldCountMismatch
			}
		}
		field.Set(val)

		return nil
	}
}

// NewArray implements Resolver, building a native Go slice for
// one-dimensional shapes and nested slices ([][]T, [][][]T, ...) for
// higher dimensions, where T is the registered Go type of elemType, or
// any for every other element type (package value's Array type carries its own shape/storage
// for the general n-dimensional case; NewArray exists for callers that
// want a strongly-typed Go array/slice field populated instead).
func (d *DefaultResolver) NewArray(elemType Value, shape []int) (any, error) {
	if len(shape) == 0 {
		return nil, errs.ErrUnsupportedValue
	}

	var elemGoType reflect.Type
	switch v := elemType.(type) {
	case *Registered:
		key := registryKey(v.ModuleRef, v.Name)
		rt, ok := d.registry[key]
		if !ok {
			return nil, errs.ErrTypeNotResolvable
		}
		elemGoType = rt
	default:
		elemGoType = reflect.TypeOf((*any)(nil)).Elem()
	}

	return newNestedSlice(elemGoType, shape).Interface(), nil
}

func newNestedSlice(elem reflect.Type, shape []int) reflect.Value {
	if len(shape) == 1 {
		return reflect.MakeSlice(reflect.SliceOf(elem), shape[0], shape[0])
	}

	inner := reflect.SliceOf(sliceTypeFor(elem, len(shape)-1))
	out := reflect.MakeSlice(inner, shape[0], shape[0])
	for i := 0; i < shape[0]; i++ {
		out.Index(i).Set(newNestedSlice(elem, shape[1:]))
	}

	return out
}

func sliceTypeFor(elem reflect.Type, depth int) reflect.Type {
	t := elem
	for i := 0; i < depth; i++ {
		t = reflect.SliceOf(t)
	}

	return t
}
