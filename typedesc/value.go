package typedesc

// Value is the common interface satisfied by every type descriptor this
// package can encode/decode: both statically-registered Go types
// (wrapped by DefaultResolver) and synthesized sandbox types (Dynamic).
type Value interface {
	// TypeName returns the bare (unqualified) name of the type.
	TypeName() string
	// Module returns the module the type is considered to belong to.
	Module() ModuleRef
}

// Registered wraps a Go reflect.Type that DefaultResolver already knows
// how to allocate/populate, giving it a stable (module, name) identity
// for the DATATYPE/WRAPPER_DATATYPE wire forms.
type Registered struct {
	Name       string
	ModuleRef  ModuleRef
	GoTypeName string // reflect.Type.String(), for diagnostics only
}

func (r *Registered) TypeName() string  { return r.Name }
func (r *Registered) Module() ModuleRef { return r.ModuleRef }
