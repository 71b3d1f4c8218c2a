package value

import (
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

// Decode reads one value, reversing every case Encode writes: interned
// singletons, back-references into the reader's slot table, the
// small-integer/fixed-width fast paths, symbols and strings, tuples,
// vectors, arrays, records (mutable and immutable), the built-in Dict
// and IDDICT forms, type descriptors, methods, tasks, and global
// references.
func Decode(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (any, error) {
	t, err := r.ReadTag()
	if err != nil {
		return nil, err
	}

	return decodeTagged(r, resolver, sandbox, t)
}

func decodeTagged(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, t tag.Tag) (any, error) {
	switch t {
	case tag.ShortBackRef:
		id, err := r.GetUint16()
		if err != nil {
			return nil, err
		}

		return r.Gettable(uint64(id))
	case tag.BackRef:
		id, err := r.GetUint32()
		if err != nil {
			return nil, err
		}

		return r.Gettable(uint64(id))
	case tag.LongBackRef:
		id, err := r.GetUint64()
		if err != nil {
			return nil, err
		}

		return r.Gettable(id)
	case tag.UndefRef:
		return nil, nil
	case tag.True:
		return true, nil
	case tag.False:
		return false, nil
	case tag.Absent:
		return nil, nil
	case tag.EmptyTuple:
		return Tuple{}, nil
	case tag.Tuple:
		slot := r.NextSlot()
		n, err := r.GetByte()
		if err != nil {
			return nil, err
		}

		return decodeTupleElems(r, resolver, sandbox, slot, int(n))
	case tag.LongTuple:
		slot := r.NextSlot()
		n, err := r.GetUint32()
		if err != nil {
			return nil, err
		}

		return decodeTupleElems(r, resolver, sandbox, slot, int(n))
	case tag.SharedRef:
		return decodeSharedRef(r, resolver, sandbox)
	case tag.Expr:
		n, err := r.GetByte()
		if err != nil {
			return nil, err
		}

		return decodeExpr(r, resolver, sandbox, int(n))
	case tag.LongExpr:
		n, err := r.GetUint32()
		if err != nil {
			return nil, err
		}

		return decodeExpr(r, resolver, sandbox, int(n))
	case tag.SimpleVector:
		n, err := r.GetUint32()
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			v, err := Decode(r, resolver, sandbox)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}

		return out, nil
	case tag.Array:
		return decodeArray(r, resolver, sandbox)
	case tag.Object:
		return decodeImmutableRecord(r, resolver, sandbox)
	case tag.RefObject:
		return decodeRefObject(r, resolver, sandbox)
	case tag.IdDict:
		slot := r.NextSlot()

		return decodeIdentityMap(r, resolver, sandbox, slot)
	case tag.FullGlobalRef:
		return decodeFullGlobalRef(r, resolver, sandbox)
	case tag.GlobalRef:
		return decodeGlobalRef(r)
	case tag.Task:
		return decodeTask(r, resolver, sandbox)
	case tag.Method:
		return decodeMethod(r, resolver, sandbox)
	case tag.MethodInstance:
		return decodeMethodInstance(r, resolver, sandbox)
	case tag.DataType, tag.WrapperDataType, tag.FullDataType:
		return typedesc.DecodeType(r, resolver, sandbox)
	case tag.ShortInt64:
		return decodeShortInt64(r)
	case tag.Int8:
		b, err := r.GetByte()

		return int64(int8(b)), err
	case tag.Int16:
		v, err := r.GetUint16()

		return int64(int16(v)), err
	case tag.Int32:
		v, err := r.GetUint32()

		return int64(int32(v)), err
	case tag.Int64:
		v, err := r.GetUint64()

		return int64(v), err
	case tag.Int128:
		b, err := r.GetBytes(16)
		if err != nil {
			return nil, err
		}
		var out tag.Int128Bytes
		copy(out[:], b)

		return out, nil
	case tag.Uint128:
		b, err := r.GetBytes(16)
		if err != nil {
			return nil, err
		}
		var out tag.Uint128Bytes
		copy(out[:], b)

		return out, nil
	case tag.Uint8:
		b, err := r.GetByte()

		return uint64(b), err
	case tag.Uint16:
		v, err := r.GetUint16()

		return uint64(v), err
	case tag.Uint32:
		v, err := r.GetUint32()

		return uint64(v), err
	case tag.Uint64:
		return r.GetUint64()
	case tag.Float16:
		return decodeFloat16(r)
	case tag.Float32:
		return decodeFloat32(r)
	case tag.Float64:
		return decodeFloat64(r)
	case tag.Char:
		v, err := r.GetUint32()

		return Char(v), err
	case tag.String, tag.LongString:
		// A string longer than 7 bytes is always preceded by an
		// explicit SHARED_REF (see that case below), which is what
		// reserves and installs its slot. This case never reserves
		// one itself.
		return r.GetString(t)
	case tag.Symbol, tag.LongSymbol:
		s, err := r.GetSymbol(t)
		if err != nil {
			return nil, err
		}
		slot := r.NextSlot()
		r.Install(slot, Symbol(s))

		return Symbol(s), nil
	}

	if name, ok := tag.LiteralSymbolName(t); ok {
		return Symbol(name), nil
	}
	if n, ok := tag.LiteralInt32(t); ok {
		return int64(n), nil
	}
	if n, ok := tag.LiteralInt64(t); ok {
		return n, nil
	}

	return nil, errs.ErrUnknownTag
}

// decodeSharedRef reverses the writer's SHARED_REF prefix: reserve the
// slot the writer reserved before emitting this tag, decode the value
// that follows, install it at that slot, and return it — so a later
// SHORTBACKREF/BACKREF/LONGBACKREF to the same slot resolves to this
// exact value.
func decodeSharedRef(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (any, error) {
	slot := r.NextSlot()

	v, err := Decode(r, resolver, sandbox)
	if err != nil {
		return nil, err
	}
	r.Install(slot, v)

	return v, nil
}

func decodeTupleElems(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, slot uint64, n int) (Tuple, error) {
	out := make(Tuple, n)
	r.Install(slot, out)
	r.PushPending(slot)
	for i := range out {
		v, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	if err := r.PopPending(slot); err != nil {
		return nil, err
	}

	return out, nil
}

func decodeExpr(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, n int) (Expr, error) {
	head, err := Decode(r, resolver, sandbox)
	if err != nil {
		return Expr{}, err
	}
	headSym, ok := head.(Symbol)
	if !ok {
		return Expr{}, errs.ErrUnknownTag
	}

	args := make([]any, n)
	for i := range args {
		v, err := Decode(r, resolver, sandbox)
		if err != nil {
			return Expr{}, err
		}
		args[i] = v
	}

	return Expr{Head: headSym, Args: args}, nil
}

// decodeRefObject reserves the slot a REF_OBJECT occupies and resolves
// its type descriptor up front, then branches to the built-in Dict
// reconstruction or the general mutable-record path — the two share a
// wire shape (type descriptor, then payload) but diverge after that.
func decodeRefObject(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (any, error) {
	slot := r.NextSlot()

	t, err := typedesc.DecodeType(r, resolver, sandbox)
	if err != nil {
		return nil, err
	}

	if resolver.IsDictType(t) {
		return decodeDict(r, resolver, sandbox, slot)
	}

	return decodeMutableRecord(r, resolver, sandbox, slot, t)
}
