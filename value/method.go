package value

import (
	"github.com/arloliu/jlcodec/errs"
	"github.com/arloliu/jlcodec/tag"
	"github.com/arloliu/jlcodec/typedesc"
	"github.com/arloliu/jlcodec/wire"
)

func encodeMethod(w *wire.Writer, m Method) error {
	if m.Owner == nil {
		return errs.ErrUnsupportedValue
	}

	if err := w.EmitTag(tag.Method); err != nil {
		return err
	}
	if err := typedesc.EncodeType(w, m.Owner); err != nil {
		return err
	}

	return typedesc.EncodeMethodDef(w, m.Def)
}

func decodeMethod(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (Method, error) {
	owner, err := typedesc.DecodeType(r, resolver, sandbox)
	if err != nil {
		return Method{}, err
	}
	def, err := typedesc.DecodeMethodDef(r, resolver, sandbox)
	if err != nil {
		return Method{}, err
	}

	return Method{Owner: owner, Def: def}, nil
}

func encodeMethodInstance(w *wire.Writer, mi MethodInstance) error {
	if err := w.EmitTag(tag.MethodInstance); err != nil {
		return err
	}
	if mi.Method.Owner == nil {
		return errs.ErrUnsupportedValue
	}
	if err := typedesc.EncodeType(w, mi.Method.Owner); err != nil {
		return err
	}
	if err := typedesc.EncodeMethodDef(w, mi.Method.Def); err != nil {
		return err
	}

	if err := w.PutUint32(uint32(len(mi.Specialization))); err != nil {
		return err
	}
	for _, p := range mi.Specialization {
		if err := typedesc.EncodeType(w, p); err != nil {
			return err
		}
	}

	return nil
}

func decodeMethodInstance(r *wire.Reader, resolver *typedesc.DefaultResolver, sandbox *typedesc.Sandbox) (MethodInstance, error) {
	owner, err := typedesc.DecodeType(r, resolver, sandbox)
	if err != nil {
		return MethodInstance{}, err
	}
	def, err := typedesc.DecodeMethodDef(r, resolver, sandbox)
	if err != nil {
		return MethodInstance{}, err
	}

	n, err := r.GetUint32()
	if err != nil {
		return MethodInstance{}, err
	}
	spec := make([]typedesc.Value, n)
	for i := range spec {
		spec[i], err = typedesc.DecodeType(r, resolver, sandbox)
		if err != nil {
			return MethodInstance{}, err
		}
	}

	return MethodInstance{Method: Method{Owner: owner, Def: def}, Specialization: spec}, nil
}
