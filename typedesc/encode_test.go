package typedesc

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jlcodec/wire"
)

func TestEncodeDecodeRegisteredType(t *testing.T) {
	mod := ModuleRef{RootName: "geo"}
	reg := &Registered{Name: "Point", ModuleRef: mod}

	var buf bytes.Buffer
	w, err := wire.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, EncodeType(w, reg))
	require.NoError(t, w.Flush())

	r, err := wire.NewReader(&buf)
	require.NoError(t, err)

	sb := NewSandbox("sandbox")
	resolver := NewDefaultResolver(sb)
	resolver.RegisterType(mod, "Point", reflect.TypeOf(struct{ X, Y int64 }{}))

	got, err := DecodeType(r, resolver, sb)
	require.NoError(t, err)
	assert.Equal(t, "Point", got.TypeName())
}

func TestEncodeDecodeDynamicType(t *testing.T) {
	rec := &TypeNameRecord{
		Name:       "Anon",
		FieldNames: []string{"a", "b"},
		FieldTypes: []Value{nil, nil},
		Mutable:    true,
		NumInit:    2,
	}
	d := &Dynamic{Record: rec, ModuleRef: Sandboxed("sandbox")}

	var buf bytes.Buffer
	w, err := wire.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, EncodeType(w, d))
	require.NoError(t, w.Flush())

	r, err := wire.NewReader(&buf)
	require.NoError(t, err)

	sb := NewSandbox("sandbox")
	resolver := NewDefaultResolver(sb)

	got, err := DecodeType(r, resolver, sb)
	require.NoError(t, err)

	dyn, ok := got.(*Dynamic)
	require.True(t, ok)
	assert.Equal(t, "Anon", dyn.Record.Name)
	assert.Equal(t, []string{"a", "b"}, dyn.Record.FieldNames)
	assert.True(t, dyn.Record.Mutable)
	assert.Equal(t, 2, dyn.Record.NumInit)
}

func TestEncodeDecodeDynamicTypeSelfReference(t *testing.T) {
	rec := &TypeNameRecord{Name: "Node", FieldNames: []string{"next"}}
	d := &Dynamic{Record: rec, ModuleRef: Sandboxed("sandbox")}
	rec.FieldTypes = []Value{d} // self-referential field, closed via the pending-number stack

	var buf bytes.Buffer
	w, err := wire.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, EncodeType(w, d))
	require.NoError(t, w.Flush())

	r, err := wire.NewReader(&buf)
	require.NoError(t, err)

	sb := NewSandbox("sandbox")
	resolver := NewDefaultResolver(sb)

	got, err := DecodeType(r, resolver, sb)
	require.NoError(t, err)

	dyn := got.(*Dynamic)
	require.Len(t, dyn.Record.FieldTypes, 1)
	assert.Same(t, dyn, dyn.Record.FieldTypes[0])
}

func TestEncodeDecodeDynamicTypeIsCachedByNumber(t *testing.T) {
	rec := &TypeNameRecord{Name: "Shared"}
	d := &Dynamic{Record: rec, ModuleRef: Sandboxed("sandbox")}

	var buf bytes.Buffer
	w, err := wire.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, EncodeType(w, d))
	require.NoError(t, EncodeType(w, d)) // second encounter: flag=0, number-only
	require.NoError(t, w.Flush())

	r, err := wire.NewReader(&buf)
	require.NoError(t, err)

	sb := NewSandbox("sandbox")
	resolver := NewDefaultResolver(sb)

	first, err := DecodeType(r, resolver, sb)
	require.NoError(t, err)
	second, err := DecodeType(r, resolver, sb)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestMethodDefRoundTripDefaultVersionOmitsExtendedFields(t *testing.T) {
	m := MethodDef{Name: "foo"}

	var buf bytes.Buffer
	w, err := wire.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, EncodeMethodDef(w, m))
	require.NoError(t, w.Flush())

	r, err := wire.NewReader(&buf)
	require.NoError(t, err)

	sb := NewSandbox("sandbox")
	resolver := NewDefaultResolver(sb)
	got, err := DecodeMethodDef(r, resolver, sb)
	require.NoError(t, err)

	assert.Equal(t, "foo", got.Name)
	assert.Equal(t, int32(0), got.InlineCost)
}

func TestLegacyRecursionRelationFieldNameIsNormalized(t *testing.T) {
	rec := &TypeNameRecord{
		Name:       "Method",
		FieldNames: []string{legacyRecursionRelationName},
		FieldTypes: []Value{nil},
	}
	d := &Dynamic{Record: rec, ModuleRef: Sandboxed("sandbox")}

	var buf bytes.Buffer
	w, err := wire.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, EncodeType(w, d))
	require.NoError(t, w.Flush())

	r, err := wire.NewReader(&buf)
	require.NoError(t, err)

	sb := NewSandbox("sandbox")
	resolver := NewDefaultResolver(sb)
	got, err := DecodeType(r, resolver, sb)
	require.NoError(t, err)

	assert.Equal(t, []string{"recursion_relation"}, got.(*Dynamic).Record.FieldNames)
}
