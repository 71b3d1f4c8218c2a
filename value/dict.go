package value

import (
	"reflect"

	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

// encodeDict writes a Go map as a REF_OBJECT of the built-in Dict
// pseudo-type: slot reservation (maps carry Go-observable identity, same
// as any other mutable value), the Dict type descriptor, an entry count,
// then each key/value pair in map iteration order.
func encodeDict(w *wire.Writer, resolver *typedesc.DefaultResolver, rv reflect.Value) error {
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
	if err := typedesc.EncodeType(w, resolver.DictType()); err != nil {
		return err
	}

	w.PushPending(slot)
	if err := w.PutUint32(uint32(rv.Len())); err != nil {
		return err
	}

	iter := rv.MapRange()
	for iter.Next() {
		if err := Encode(w, resolver, iter.Key().Interface()); err != nil {
			return err
		}
		if err := Encode(w, resolver, iter.Value().Interface()); err != nil {
			return err
		}
	}

	return w.PopPending(slot)
}

// decodeDict reads a Dict REF_OBJECT payload into a map[any]any (package
// value has no compile-time K/V to reconstruct a narrower Go map type;
// callers that need one convert the entries themselves).
func decodeDict(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, slot uint64) (any, error) {
	out := make(map[any]any)
	r.Install(slot, out)
	r.PushPending(slot)

	n, err := r.GetUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		k, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		v, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}

	if err := r.PopPending(slot); err != nil {
		return nil, err
	}

	return out, nil
}

// encodeIdentityMap writes m (any *IdentityMap[K, V]) as an IDDICT: slot
// reservation by pointer identity, entry count, then key/value pairs —
// there is no type descriptor, since IDDICT is its own closed wire form
// rather than a record (SPEC_FULL.md OPEN QUESTIONS #4).
func encodeIdentityMap(w *wire.Writer, resolver *typedesc.DefaultResolver, rv reflect.Value, m identityMapLike) error {
	ptr := rv.Pointer()
	slot, emitted, err := w.TryBackrefPointer(uint64(ptr))
	if err != nil {
		return err
	}
	if emitted {
		return nil
	}

	if err := w.EmitTag(tag.IdDict); err != nil {
		return err
	}

	w.PushPending(slot)
	if err := w.PutUint32(uint32(m.Len())); err != nil {
		return err
	}

	var encodeErr error
	m.IdentityMapRange(func(k, v any) bool {
		if encodeErr = Encode(w, resolver, k); encodeErr != nil {
			return false
		}
		if encodeErr = Encode(w, resolver, v); encodeErr != nil {
			return false
		}

		return true
	})
	if encodeErr != nil {
		return encodeErr
	}

	return w.PopPending(slot)
}

func decodeIdentityMap(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox, slot uint64) (any, error) {
	out := NewIdentityMap[any, any]()
	r.Install(slot, out)
	r.PushPending(slot)

	n, err := r.GetUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		k, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		v, err := Decode(r, resolver, sandbox)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}

	if err := r.PopPending(slot); err != nil {
		return nil, err
	}

	return out, nil
}
