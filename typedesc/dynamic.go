package typedesc

// TypeNameRecord is the full synthesized-type payload spec.md §4.6
// describes: a symbolic name, its field layout, its declared supertype
// and generic parameter names, and the handful of flags the original
// format carries (singleton instance, abstract, mutable, the count of
// fields guaranteed initialized at construction, and the widest method
// dispatch arity observed for this type).
type TypeNameRecord struct {
	Name       string
	FieldNames []string
	FieldTypes []Value // one entry per FieldNames entry; may contain nil for not-yet-resolved recursive fields
	Super      Value
	Params     []string
	Singleton  bool
	Abstract   bool
	Mutable    bool
	NumInit    int
	MaxArity   int
	Methods    []MethodDef
}

// MethodDef is an attached method definition, retained as an opaque,
// re-serializable record when the host has no RegisterMethod hook to
// reinstall it against (spec.md §4.6, §9).
type MethodDef struct {
	Name      string
	Signature Value // nil when the method has no recorded signature

	// Threshold-versioned fields (spec.md's SUPPLEMENTED FEATURES note):
	// present only when the peer's negotiated wire.Reader.Version is new
	// enough; zero-valued (and never written) otherwise.
	InlineCost   int32
	Pure         bool
	InferenceCap int32
}

// Dynamic is a type descriptor synthesized for a TypeNameRecord with no
// matching statically-registered Go type: the Go-native substitute for
// "create a fresh named type in a runtime namespace" (spec.md §4.6,
// SPEC_FULL.md OPEN QUESTIONS #3).
type Dynamic struct {
	Record    *TypeNameRecord
	ModuleRef ModuleRef
}

func (d *Dynamic) TypeName() string  { return d.Record.Name }
func (d *Dynamic) Module() ModuleRef { return d.ModuleRef }

// DynamicInstance is a record value whose type is a Dynamic: a plain
// field-name-to-value map standing in for an instance of a type Go has
// no static definition for.
type DynamicInstance struct {
	Type   *Dynamic
	Fields map[string]any
}
