package value

import (
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

// encodeGlobalRef writes g following spec.md's literal dichotomy: a
// target living in a sandbox module, or a locally-constant binding of an
// anonymous-function type, emits FULL_GLOBALREF plus its type payload;
// every other global name emits the compact GLOBALREF carrying module
// and symbol directly, with no intervening number cache.
func encodeGlobalRef(w *wire.Writer, g GlobalRef) error {
	if g.Module.IsSandbox || g.Closure {
		if err := w.EmitTag(tag.FullGlobalRef); err != nil {
			return err
		}
		if err := g.Module.Encode(w); err != nil {
			return err
		}
		if err := w.PutSymbol(g.Name); err != nil {
			return err
		}
		if g.Type == nil {
			return w.EmitAsValue(tag.False)
		}
		if err := w.EmitAsValue(tag.True); err != nil {
			return err
		}

		return typedesc.EncodeType(w, g.Type)
	}

	if err := w.EmitTag(tag.GlobalRef); err != nil {
		return err
	}
	if err := g.Module.Encode(w); err != nil {
		return err
	}

	return w.PutSymbol(g.Name)
}

func decodeFullGlobalRef(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (GlobalRef, error) {
	module, err := typedesc.DecodeModule(r)
	if err != nil {
		return GlobalRef{}, err
	}
	nameTag, err := r.ReadTag()
	if err != nil {
		return GlobalRef{}, err
	}
	name, err := r.GetSymbol(nameTag)
	if err != nil {
		return GlobalRef{}, err
	}

	ref := GlobalRef{Module: module, Name: name}

	hasType, err := r.ReadTag()
	if err != nil {
		return GlobalRef{}, err
	}
	switch hasType {
	case tag.True:
		ref.Type, err = typedesc.DecodeType(r, resolver, sandbox)
		if err != nil {
			return GlobalRef{}, err
		}
	case tag.False:
	default:
		return GlobalRef{}, errs.ErrUnknownTag
	}

	return ref, nil
}

func decodeGlobalRef(r *wire.Reader) (GlobalRef, error) {
	module, err := typedesc.DecodeModule(r)
	if err != nil {
		return GlobalRef{}, err
	}
	nameTag, err := r.ReadTag()
	if err != nil {
		return GlobalRef{}, err
	}
	name, err := r.GetSymbol(nameTag)
	if err != nil {
		return GlobalRef{}, err
	}

	return GlobalRef{Module: module, Name: name}, nil
}
