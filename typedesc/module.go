package typedesc

import (
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/wire"
)

// ModuleRef identifies a module ("package" in spec.md terms): a root
// name with an optional stable identity (16-byte UUID, absent for
// synthesized sandbox modules) and a dotted child path, exactly the
// shape spec.md §4.4 describes for the MODULE tag.
type ModuleRef struct {
	RootName string
	RootUUID *[16]byte // nil for modules with no build-identity (sandbox, main)
	Path     []string  // child component names, root-to-leaf order

	// IsSandbox marks a module synthesized by Sandboxed, never set by
	// DecodeModule. It is in-memory-only bookkeeping the wire format
	// itself has no room for: encodeGlobalRef consults it to choose
	// between FULL_GLOBALREF and GLOBALREF (spec.md §4.4).
	IsSandbox bool
}

// Sandboxed returns a ModuleRef naming the private namespace a
// synthesized type is registered under, rooted at name with no UUID.
func Sandboxed(name string) ModuleRef {
	return ModuleRef{RootName: name, IsSandbox: true}
}

// String renders a dotted path for diagnostics; it is not used by the
// wire format itself.
func (m ModuleRef) String() string {
	s := m.RootName
	for _, p := range m.Path {
		s += "." + p
	}

	return s
}

// Encode writes m as a MODULE record: a root identity pair (UUID-or-null
// then the root name as a symbol) followed by the child path terminated
// by the EmptyTuple literal.
func (m ModuleRef) Encode(w *wire.Writer) error {
	if err := w.EmitTag(tag.Module); err != nil {
		return err
	}

	if m.RootUUID == nil {
		if err := w.EmitAsValue(tag.False); err != nil {
			return err
		}
	} else {
		if err := w.EmitAsValue(tag.True); err != nil {
			return err
		}
		if err := w.PutBytes(m.RootUUID[:]); err != nil {
			return err
		}
	}

	if err := w.PutSymbol(m.RootName); err != nil {
		return err
	}

	for _, p := range m.Path {
		if err := w.EmitAsValue(tag.True); err != nil {
			return err
		}
		if err := w.PutSymbol(p); err != nil {
			return err
		}
	}

	return w.EmitAsValue(tag.EmptyTuple)
}

// DecodeModule reads a self-contained MODULE record, including its
// leading tag.Module tag byte.
func DecodeModule(r *wire.Reader) (ModuleRef, error) {
	var m ModuleRef

	modTag, err := r.ReadTag()
	if err != nil {
		return m, err
	}
	if modTag != tag.Module {
		return m, errs.ErrUnknownTag
	}

	hasUUID, err := r.ReadTag()
	if err != nil {
		return m, err
	}
	switch hasUUID {
	case tag.True:
		b, err := r.GetBytes(16)
		if err != nil {
			return m, err
		}
		var uuid [16]byte
		copy(uuid[:], b)
		m.RootUUID = &uuid
	case tag.False:
		// no identity
	default:
		return m, errs.ErrUnknownTag
	}

	nameTag, err := r.ReadTag()
	if err != nil {
		return m, err
	}
	m.RootName, err = r.GetSymbol(nameTag)
	if err != nil {
		return m, err
	}

	for {
		t, err := r.ReadTag()
		if err != nil {
			return m, err
		}
		if t == tag.EmptyTuple {
			break
		}
		if t != tag.True {
			return m, errs.ErrUnknownTag
		}

		nameTag, err := r.ReadTag()
		if err != nil {
			return m, err
		}
		name, err := r.GetSymbol(nameTag)
		if err != nil {
			return m, err
		}
		m.Path = append(m.Path, name)
	}

	return m, nil
}
