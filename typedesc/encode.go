package typedesc

import (
	"reflect"

	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/wire"
)

// MethodExtendedFieldsVersion is the protocol version at which MethodDef
// gained InlineCost/Pure/InferenceCap (spec.md's SUPPLEMENTED FEATURES
// note on threshold-versioned method fields). Streams negotiated at an
// older version never carry these three fields.
const MethodExtendedFieldsVersion uint8 = 2

// legacyRecursionRelationName is the historical misspelling of the
// "recursion_relation" field name that some pre-MethodExtendedFieldsVersion
// producers emitted; tolerated on read, never written.
const legacyRecursionRelationName = "recurrsion_relation"

// EncodeType writes v as DATATYPE (a *Registered) or FULL_DATATYPE (a
// *Dynamic), selecting the form by v's concrete kind (spec.md §4.6). The
// WRAPPER_DATATYPE form is written by EncodeWrapper.
func EncodeType(w *wire.Writer, v Value) error {
	switch t := v.(type) {
	case *Registered:
		return encodeRegistered(w, t)
	case *Dynamic:
		return encodeDynamic(w, t)
	default:
		return errs.ErrUnsupportedValue
	}
}

func encodeRegistered(w *wire.Writer, r *Registered) error {
	if err := w.EmitTag(tag.DataType); err != nil {
		return err
	}
	if err := r.ModuleRef.Encode(w); err != nil {
		return err
	}
	if err := w.PutSymbol(r.Name); err != nil {
		return err
	}

	// This implementation does not reapply generic type parameters on
	// resolve: the param count is always 0.
	return w.PutUint32(0)
}

// EncodeWrapper writes v's unparameterized outer form (WRAPPER_DATATYPE):
// module and name only, no parameter list.
func EncodeWrapper(w *wire.Writer, r *Registered) error {
	if err := w.EmitTag(tag.WrapperDataType); err != nil {
		return err
	}
	if err := r.ModuleRef.Encode(w); err != nil {
		return err
	}

	return w.PutSymbol(r.Name)
}

func encodeDynamic(w *wire.Writer, d *Dynamic) error {
	if err := w.EmitTag(tag.FullDataType); err != nil {
		return err
	}
	if err := d.ModuleRef.Encode(w); err != nil {
		return err
	}
	if err := w.PutSymbol(d.Record.Name); err != nil {
		return err
	}

	num, isNew := w.Numbers.Number(reflect.ValueOf(d.Record).Pointer())
	if err := w.PutUint64(num); err != nil {
		return err
	}
	if !isNew {
		return w.PutByte(0)
	}
	if err := w.PutByte(1); err != nil {
		return err
	}

	w.PushPending(num)
	if err := encodeTypeNameRecord(w, d.Record); err != nil {
		return err
	}

	return w.PopPending(num)
}

func encodeTypeNameRecord(w *wire.Writer, rec *TypeNameRecord) error {
	if err := w.PutUint32(uint32(len(rec.FieldNames))); err != nil {
		return err
	}
	for i, name := range rec.FieldNames {
		if err := w.PutSymbol(name); err != nil {
			return err
		}
		if err := encodeOptionalType(w, rec.FieldTypes[i]); err != nil {
			return err
		}
	}

	if err := encodeOptionalType(w, rec.Super); err != nil {
		return err
	}

	if err := w.PutUint32(uint32(len(rec.Params))); err != nil {
		return err
	}
	for _, p := range rec.Params {
		if err := w.PutSymbol(p); err != nil {
			return err
		}
	}

	var flags byte
	if rec.Singleton {
		flags |= 1 << 0
	}
	if rec.Abstract {
		flags |= 1 << 1
	}
	if rec.Mutable {
		flags |= 1 << 2
	}
	if err := w.PutByte(flags); err != nil {
		return err
	}

	if err := w.PutUint32(uint32(rec.NumInit)); err != nil {
		return err
	}
	if err := w.PutUint32(uint32(rec.MaxArity)); err != nil {
		return err
	}

	if err := w.PutUint32(uint32(len(rec.Methods))); err != nil {
		return err
	}
	for _, m := range rec.Methods {
		if err := EncodeMethodDef(w, m); err != nil {
			return err
		}
	}

	return nil
}

func encodeOptionalType(w *wire.Writer, v Value) error {
	if v == nil {
		return w.EmitAsValue(tag.False)
	}
	if err := w.EmitAsValue(tag.True); err != nil {
		return err
	}

	return EncodeType(w, v)
}

// EncodeMethodDef writes m, gating the threshold-versioned fields on the
// writer's own declared protocol version (tag.CurrentVersion): a writer
// built against an older protocol never emits them.
func EncodeMethodDef(w *wire.Writer, m MethodDef) error {
	if err := w.PutSymbol(m.Name); err != nil {
		return err
	}
	if err := encodeOptionalType(w, m.Signature); err != nil {
		return err
	}

	if tag.CurrentVersion < MethodExtendedFieldsVersion {
		return nil
	}

	if err := w.PutUint32(uint32(m.InlineCost)); err != nil {
		return err
	}
	pure := byte(0)
	if m.Pure {
		pure = 1
	}
	if err := w.PutByte(pure); err != nil {
		return err
	}

	return w.PutUint32(uint32(m.InferenceCap))
}

// DecodeType reads a DATATYPE/WRAPPER_DATATYPE/FULL_DATATYPE record,
// resolving against resolver or synthesizing into sandbox (spec.md §4.6).
func DecodeType(r *wire.Reader, resolver Resolver, sandbox *Sandbox) (Value, error) {
	t, err := r.ReadTag()
	if err != nil {
		return nil, err
	}

	switch t {
	case tag.DataType:
		module, err := DecodeModule(r)
		if err != nil {
			return nil, err
		}
		nameTag, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		name, err := r.GetSymbol(nameTag)
		if err != nil {
			return nil, err
		}
		paramCount, err := r.GetUint32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < paramCount; i++ {
			if _, err := DecodeType(r, resolver, sandbox); err != nil {
				return nil, err
			}
		}

		v, ok := resolver.Resolve(module, name)
		if !ok {
			return nil, errs.ErrTypeNotResolvable
		}

		return v, nil

	case tag.WrapperDataType:
		module, err := DecodeModule(r)
		if err != nil {
			return nil, err
		}
		nameTag, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		name, err := r.GetSymbol(nameTag)
		if err != nil {
			return nil, err
		}

		v, ok := resolver.Resolve(module, name)
		if !ok {
			return nil, errs.ErrTypeNotResolvable
		}

		return v, nil

	case tag.FullDataType:
		return decodeFullDataType(r, resolver, sandbox)

	default:
		return nil, errs.ErrUnknownTag
	}
}

func decodeFullDataType(r *wire.Reader, resolver Resolver, sandbox *Sandbox) (Value, error) {
	if _, err := DecodeModule(r); err != nil {
		return nil, err
	}
	nameTag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	name, err := r.GetSymbol(nameTag)
	if err != nil {
		return nil, err
	}
	num, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	flag, err := r.GetByte()
	if err != nil {
		return nil, err
	}

	if flag == 0 {
		cached, ok := r.Numbers.Get(num)
		if !ok {
			return nil, errs.ErrTypeNotResolvable
		}
		d, ok := cached.(*Dynamic)
		if !ok {
			return nil, errs.ErrTypeNotResolvable
		}

		return d, nil
	}

	rec := &TypeNameRecord{Name: name}
	d := sandbox.GetOrCreate(rec, num)
	r.Numbers.Put(num, d)

	r.PushPending(num)
	if err := decodeTypeNameRecordInto(r, resolver, sandbox, rec); err != nil {
		return nil, err
	}
	if err := r.PopPending(num); err != nil {
		return nil, err
	}

	return d, nil
}

func decodeTypeNameRecordInto(r *wire.Reader, resolver Resolver, sandbox *Sandbox, rec *TypeNameRecord) error {
	fieldCount, err := r.GetUint32()
	if err != nil {
		return err
	}
	rec.FieldNames = make([]string, fieldCount)
	rec.FieldTypes = make([]Value, fieldCount)
	for i := uint32(0); i < fieldCount; i++ {
		nameTag, err := r.ReadTag()
		if err != nil {
			return err
		}
		name, err := r.GetSymbol(nameTag)
		if err != nil {
			return err
		}
		if name == legacyRecursionRelationName {
			name = "recursion_relation"
		}
		rec.FieldNames[i] = name

		ft, err := decodeOptionalType(r, resolver, sandbox)
		if err != nil {
			return err
		}
		rec.FieldTypes[i] = ft
	}

	super, err := decodeOptionalType(r, resolver, sandbox)
	if err != nil {
		return err
	}
	rec.Super = super

	paramCount, err := r.GetUint32()
	if err != nil {
		return err
	}
	rec.Params = make([]string, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		nameTag, err := r.ReadTag()
		if err != nil {
			return err
		}
		name, err := r.GetSymbol(nameTag)
		if err != nil {
			return err
		}
		rec.Params[i] = name
	}

	flags, err := r.GetByte()
	if err != nil {
		return err
	}
	rec.Singleton = flags&(1<<0) != 0
	rec.Abstract = flags&(1<<1) != 0
	rec.Mutable = flags&(1<<2) != 0

	numInit, err := r.GetUint32()
	if err != nil {
		return err
	}
	rec.NumInit = int(numInit)

	maxArity, err := r.GetUint32()
	if err != nil {
		return err
	}
	rec.MaxArity = int(maxArity)

	methodCount, err := r.GetUint32()
	if err != nil {
		return err
	}
	rec.Methods = make([]MethodDef, methodCount)
	for i := uint32(0); i < methodCount; i++ {
		m, err := DecodeMethodDef(r, resolver, sandbox)
		if err != nil {
			return err
		}
		rec.Methods[i] = m
	}

	return nil
}

func decodeOptionalType(r *wire.Reader, resolver Resolver, sandbox *Sandbox) (Value, error) {
	present, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	switch present {
	case tag.True:
		return DecodeType(r, resolver, sandbox)
	case tag.False:
		return nil, nil
	default:
		return nil, errs.ErrUnknownTag
	}
}

// DecodeMethodDef reads a MethodDef, reading the threshold-versioned
// fields only when r.Version is new enough (spec.md's version-tolerance
// rule: "versioned field additions default when the peer is older").
func DecodeMethodDef(r *wire.Reader, resolver Resolver, sandbox *Sandbox) (MethodDef, error) {
	var m MethodDef

	nameTag, err := r.ReadTag()
	if err != nil {
		return m, err
	}
	m.Name, err = r.GetSymbol(nameTag)
	if err != nil {
		return m, err
	}

	m.Signature, err = decodeOptionalType(r, resolver, sandbox)
	if err != nil {
		return m, err
	}

	if r.Version < MethodExtendedFieldsVersion {
		return m, nil
	}

	inlineCost, err := r.GetUint32()
	if err != nil {
		return m, err
	}
	m.InlineCost = int32(inlineCost)

	pure, err := r.GetByte()
	if err != nil {
		return m, err
	}
	m.Pure = pure != 0

	inferenceCap, err := r.GetUint32()
	if err != nil {
		return m, err
	}
	m.InferenceCap = int32(inferenceCap)

	return m, nil
}
