package value

import "github.com/arloliu/jlcodec/typedesc"

// Char requests CHAR encoding for a Unicode code point. Go's `rune` is
// only an alias for int32, so a bare int32 value is ambiguous between
// the INT32 and CHAR wire tags; wrap it in Char to mean the latter.
type Char rune

// Symbol is an interned short identifier, distinct from a plain String:
// symbols are always backref-eligible regardless of length, strings only
// when len(s) > 7 (spec.md §4.4).
type Symbol string

// Tuple is a fixed-length, heterogeneous, immutable sequence — the
// TUPLE/LONG_TUPLE wire family. Contrast with a plain []any, which
// Encode treats as a SIMPLE_VECTOR (growable, homogeneous in spirit but
// not enforced).
type Tuple []any

// Expr is the Go-native reading of the EXPR wire tag: a closed record
// with a head symbol and an argument list, standing in for an open
// homoiconic expression tree (SPEC_FULL.md OPEN QUESTIONS #2).
type Expr struct {
	Head Symbol
	Args []any
}

// Array is the generic n-dimensional array value: element type
// descriptor, shape, and backing storage. Data holds one of []byte (for
// byte elements), []bool (bit-packed via run-length on the wire, see
// encodeArray), []int64, []float64, []string, or []any (the general
// case).
type Array struct {
	ElemType typedesc.Value
	Shape    []int
	Data     any
}

// GlobalRef is a reference to a named global binding: module-qualified
// name, resolved independently of the type-descriptor subprotocol
// (spec.md §4.1's GLOBALREF/FULL_GLOBALREF pair). Closure marks a
// locally-constant binding of an anonymous-function type; together with
// Module.IsSandbox it decides the FULL_GLOBALREF-vs-GLOBALREF dichotomy
// spec.md §4.4 describes. Type is only meaningful (and only written)
// alongside a FULL_GLOBALREF: the extra type payload the spec calls for
// in that case.
type GlobalRef struct {
	Module  typedesc.ModuleRef
	Name    string
	Closure bool
	Type    typedesc.Value
}

// Task is a goroutine-like unit of work. Serializing one that is still
// running (State == TaskRunnable) is a documented failure case
// (errs.ErrRunningTask); only a finished task's closure, task-local
// storage, and result (or captured exception) round-trip. ID is a
// host-assigned identity used only for the caller's own bookkeeping; it
// never appears on the wire (spec.md §4.4 lists no such field).
type Task struct {
	ID           uint64
	BodyClosure  any
	LocalStorage any
	State        Symbol
	Result       any
	Failed       bool
}

// Method is a function value's serializable metadata: its type-level
// definition plus the type it is considered to belong to.
type Method struct {
	Owner typedesc.Value
	Def   typedesc.MethodDef
}

// MethodInstance is a Method specialized against a concrete parameter
// list, mirroring the distinction spec.md draws between a generic method
// definition and one instance dispatch has already resolved.
type MethodInstance struct {
	Method         Method
	Specialization []typedesc.Value
}
